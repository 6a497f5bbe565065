package market

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

// SupplySales counts every live sale on the market.
func (c *Contract) SupplySales(env *runtime.Env) (int, error) {
	count := 0
	err := env.KV.Scan([]byte(prefixSale), func(_, _ []byte) error {
		count++
		return nil
	})
	return count, err
}

func (c *Contract) SupplyByOwnerID(env *runtime.Env, accountID string) (int, error) {
	return c.byOwner.Count(env.KV, accountID)
}

// SalesByOwnerID pages through an account's live sales, in listing
// order.
func (c *Contract) SalesByOwnerID(env *runtime.Env, args *OwnerPageArgs) ([]*Sale, error) {
	start, max, err := pageWindow(args.FromIndex, args.Limit)
	if err != nil {
		return nil, err
	}
	keys, err := c.byOwner.Members(env.KV, args.AccountID)
	if err != nil {
		return nil, err
	}
	sales := []*Sale{}
	for i := start; i < len(keys) && i < start+max; i++ {
		sale, err := c.readSaleByKey(env.KV, keys[i])
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

func (c *Contract) SupplyByNFTContractID(env *runtime.Env, nftContractID string) (int, error) {
	return c.byLedger.Count(env.KV, nftContractID)
}

// SalesByNFTContractID pages through the live sales of one ledger's
// tokens, in listing order.
func (c *Contract) SalesByNFTContractID(env *runtime.Env, args *LedgerPageArgs) ([]*Sale, error) {
	start, max, err := pageWindow(args.FromIndex, args.Limit)
	if err != nil {
		return nil, err
	}
	tokens, err := c.byLedger.Members(env.KV, args.NFTContractID)
	if err != nil {
		return nil, err
	}
	sales := []*Sale{}
	for i := start; i < len(tokens) && i < start+max; i++ {
		sale, err := c.readSaleByKey(env.KV, saleKey(args.NFTContractID, tokens[i]))
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, nil
}
