package nft

import (
	"fmt"
	"strconv"

	"github.com/nfmlabs/nfm/runtime"
)

const defaultPageLimit = 50

func pageWindow(fromIndex *string, limit *int) (int, int, error) {
	start := 0
	if fromIndex != nil {
		parsed, err := strconv.Atoi(*fromIndex)
		if err != nil || parsed < 0 {
			return 0, 0, fmt.Errorf("%w: from_index %q", ErrInvalidArgs, *fromIndex)
		}
		start = parsed
	}
	max := defaultPageLimit
	if limit != nil {
		if *limit <= 0 {
			return 0, 0, fmt.Errorf("%w: limit %d", ErrInvalidArgs, *limit)
		}
		max = *limit
	}
	return start, max, nil
}

func (c *Contract) listTokenIDs(env *runtime.Env) ([]string, error) {
	var ids []string
	prefix := []byte(prefixMetadata)
	err := env.KV.Scan(prefix, func(key, _ []byte) error {
		ids = append(ids, string(key[len(prefix):]))
		return nil
	})
	return ids, err
}

// TotalSupply counts every token ever minted.
func (c *Contract) TotalSupply(env *runtime.Env) (int, error) {
	ids, err := c.listTokenIDs(env)
	return len(ids), err
}

// Tokens pages through all tokens on the ledger.
func (c *Contract) Tokens(env *runtime.Env, args *TokensArgs) ([]*JsonToken, error) {
	start, max, err := pageWindow(args.FromIndex, args.Limit)
	if err != nil {
		return nil, err
	}
	ids, err := c.listTokenIDs(env)
	if err != nil {
		return nil, err
	}
	tokens := []*JsonToken{}
	for i := start; i < len(ids) && i < start+max; i++ {
		token, err := c.Token(env, ids[i])
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// TokensForOwner pages through an owner's set, in set iteration
// order.
func (c *Contract) TokensForOwner(env *runtime.Env, args *TokensForOwnerArgs) ([]*JsonToken, error) {
	start, max, err := pageWindow(args.FromIndex, args.Limit)
	if err != nil {
		return nil, err
	}
	ids, err := c.owners.Members(env.KV, args.AccountID)
	if err != nil {
		return nil, err
	}
	tokens := []*JsonToken{}
	for i := start; i < len(ids) && i < start+max; i++ {
		token, err := c.Token(env, ids[i])
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// SupplyForOwner returns how many tokens the account currently owns,
// zero for an account with no set.
func (c *Contract) SupplyForOwner(env *runtime.Env, accountID string) (int, error) {
	return c.owners.Count(env.KV, accountID)
}
