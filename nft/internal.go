package nft

import (
	"fmt"
	"math/big"

	"github.com/MixinNetwork/mixin/common"
	"github.com/nfmlabs/nfm/runtime"
	"github.com/nfmlabs/nfm/store"
)

func (c *Contract) readToken(kv store.KV, tokenID string) (*Token, error) {
	val, err := kv.Get([]byte(prefixToken + tokenID))
	if err != nil || val == nil {
		return nil, err
	}
	var token Token
	err = common.MsgpackUnmarshal(val, &token)
	return &token, err
}

func (c *Contract) writeToken(kv store.KV, tokenID string, token *Token) error {
	return kv.Set([]byte(prefixToken+tokenID), common.MsgpackMarshalPanic(token))
}

func (c *Contract) readMetadata(kv store.KV, tokenID string) (*TokenMetadata, error) {
	val, err := kv.Get([]byte(prefixMetadata + tokenID))
	if err != nil || val == nil {
		return nil, err
	}
	var meta TokenMetadata
	err = common.MsgpackUnmarshal(val, &meta)
	return &meta, err
}

func (c *Contract) writeMetadata(kv store.KV, tokenID string, meta *TokenMetadata) error {
	return kv.Set([]byte(prefixMetadata+tokenID), common.MsgpackMarshalPanic(meta))
}

func (c *Contract) removeTokenFromOwner(kv store.KV, accountID, tokenID string) error {
	removed, err := c.owners.Remove(kv, accountID, tokenID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("token %s should be owned by %s", tokenID, accountID)
	}
	return nil
}

// transfer is the atomic local step shared by every transfer entry
// point: authorize the sender, move the token between owner sets and
// replace the record with approvals reset. It returns the pre
// mutation token, callers need it for storage refunds and rollback.
func (c *Contract) transfer(env *runtime.Env, senderID, receiverID, tokenID string, approvalID *uint64, memo *string) (*Token, error) {
	token, err := c.readToken(env.KV, tokenID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, tokenID)
	}

	if senderID != token.OwnerID {
		actual, found := token.ApprovedAccountIDs[senderID]
		if !found {
			return nil, fmt.Errorf("%w: %s cannot transfer %s", ErrUnauthorized, senderID, tokenID)
		}
		if approvalID != nil && actual != *approvalID {
			return nil, fmt.Errorf("%w: actual %d, given %d", ErrStaleApproval, actual, *approvalID)
		}
	}
	if token.OwnerID == receiverID {
		return nil, fmt.Errorf("%w: %s", ErrSelfTransfer, tokenID)
	}

	err = c.removeTokenFromOwner(env.KV, token.OwnerID, tokenID)
	if err != nil {
		return nil, err
	}
	err = c.owners.Add(env.KV, receiverID, tokenID)
	if err != nil {
		return nil, err
	}

	next := &Token{
		OwnerID:            receiverID,
		ApprovedAccountIDs: map[string]uint64{},
		NextApprovalID:     token.NextApprovalID,
		Royalty:            token.Royalty,
	}
	err = c.writeToken(env.KV, tokenID, next)
	if err != nil {
		return nil, err
	}

	var authorizedID *string
	if senderID != token.OwnerID {
		authorizedID = &senderID
	}
	err = env.Emit(NewTransferEvent(authorizedID, token.OwnerID, receiverID, memo, tokenID))
	if err != nil {
		return nil, err
	}
	return token, nil
}

// The extra 12 bytes cover the serialized length of the account
// string and its approval id.
func bytesForApprovedAccount(accountID string) int64 {
	return int64(len(accountID)) + 4 + 8
}

// refundApprovedAccounts pays accountID back the storage released by
// the given approval entries.
func (c *Contract) refundApprovedAccounts(env *runtime.Env, accountID string, approved map[string]uint64) error {
	if len(approved) == 0 {
		return nil
	}
	var released int64
	for account := range approved {
		released += bytesForApprovedAccount(account)
	}
	return env.Pay(accountID, env.StorageCost(released))
}

// assertOneUnit enforces the exactly one unit deposit convention on
// state changing calls, so a wallet always prompts for confirmation.
func assertOneUnit(env *runtime.Env) error {
	if env.Deposit.Cmp(big.NewInt(1)) != 0 {
		return fmt.Errorf("%w: requires attached deposit of exactly 1", ErrInsufficientDeposit)
	}
	return nil
}

func assertAtLeastOneUnit(env *runtime.Env) error {
	if env.Deposit.Sign() < 1 {
		return fmt.Errorf("%w: requires attached deposit of at least 1", ErrInsufficientDeposit)
	}
	return nil
}

// refundExcessDeposit checks the attached deposit covers storageUsed
// bytes and returns anything above the cost to the caller. Refunds of
// a single unit are kept, they cost more to send than they are worth.
func refundExcessDeposit(env *runtime.Env, storageUsed int64) error {
	required := env.StorageCost(storageUsed)
	if env.Deposit.Cmp(required) < 0 {
		return fmt.Errorf("%w: must attach %s to cover storage", ErrInsufficientDeposit, required)
	}
	refund := new(big.Int).Sub(env.Deposit, required)
	if refund.Cmp(big.NewInt(1)) > 0 {
		return env.Pay(env.Predecessor, refund)
	}
	return nil
}
