package nft

import (
	"fmt"

	"github.com/nfmlabs/nfm/runtime"
)

// Approve grants account_id the right to transfer the token on the
// owner's behalf. Each grant gets a fresh id from the per token
// counter; ids are never reused, so a stale grant can always be told
// apart from a current one. When msg is supplied the approved account
// is notified asynchronously, and a failure of that notification is
// not rolled back here, the approval has already committed.
func (c *Contract) Approve(env *runtime.Env, args *ApproveArgs) error {
	err := assertAtLeastOneUnit(env)
	if err != nil {
		return err
	}
	token, err := c.readToken(env.KV, args.TokenID)
	if err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, args.TokenID)
	}
	if env.Predecessor != token.OwnerID {
		return fmt.Errorf("%w: only the token owner can approve", ErrUnauthorized)
	}

	approvalID := token.NextApprovalID
	_, exists := token.ApprovedAccountIDs[args.AccountID]
	token.ApprovedAccountIDs[args.AccountID] = approvalID
	token.NextApprovalID++
	err = c.writeToken(env.KV, args.TokenID, token)
	if err != nil {
		return err
	}

	// storage is only charged for a brand new entry, overwriting an
	// old grant reuses its slot
	var storageUsed int64
	if !exists {
		storageUsed = bytesForApprovedAccount(args.AccountID)
	}
	err = refundExcessDeposit(env, storageUsed)
	if err != nil {
		return err
	}

	if args.Msg == nil {
		return nil
	}
	_, err = env.Schedule(args.AccountID, "nft_on_approve", &OnApproveArgs{
		TokenID:    args.TokenID,
		OwnerID:    token.OwnerID,
		ApprovalID: approvalID,
		Msg:        *args.Msg,
	}, nil)
	return err
}

// IsApproved reports whether account_id may transfer the token, and
// when approval_id is given, whether that exact grant is still live.
func (c *Contract) IsApproved(env *runtime.Env, args *IsApprovedArgs) (bool, error) {
	token, err := c.readToken(env.KV, args.TokenID)
	if err != nil {
		return false, err
	}
	if token == nil {
		return false, fmt.Errorf("%w: %s", ErrTokenNotFound, args.TokenID)
	}
	actual, found := token.ApprovedAccountIDs[args.ApprovedAccountID]
	if !found {
		return false, nil
	}
	if args.ApprovalID == nil {
		return true, nil
	}
	return actual == *args.ApprovalID, nil
}

// Revoke removes one approval and refunds its storage. Revoking an
// account that was never approved is a silent no-op.
func (c *Contract) Revoke(env *runtime.Env, args *RevokeArgs) error {
	err := assertOneUnit(env)
	if err != nil {
		return err
	}
	token, err := c.readToken(env.KV, args.TokenID)
	if err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, args.TokenID)
	}
	if env.Predecessor != token.OwnerID {
		return fmt.Errorf("%w: only the token owner can revoke", ErrUnauthorized)
	}
	if _, found := token.ApprovedAccountIDs[args.AccountID]; !found {
		return nil
	}
	delete(token.ApprovedAccountIDs, args.AccountID)
	err = c.writeToken(env.KV, args.TokenID, token)
	if err != nil {
		return err
	}
	return env.Pay(env.Predecessor, env.StorageCost(bytesForApprovedAccount(args.AccountID)))
}

// RevokeAll clears the whole approval table, refunding the released
// storage. Idempotent, a second call finds nothing to remove.
func (c *Contract) RevokeAll(env *runtime.Env, tokenID string) error {
	err := assertOneUnit(env)
	if err != nil {
		return err
	}
	token, err := c.readToken(env.KV, tokenID)
	if err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, tokenID)
	}
	if env.Predecessor != token.OwnerID {
		return fmt.Errorf("%w: only the token owner can revoke", ErrUnauthorized)
	}
	if len(token.ApprovedAccountIDs) == 0 {
		return nil
	}
	err = c.refundApprovedAccounts(env, env.Predecessor, token.ApprovedAccountIDs)
	if err != nil {
		return err
	}
	token.ApprovedAccountIDs = map[string]uint64{}
	return c.writeToken(env.KV, tokenID, token)
}
