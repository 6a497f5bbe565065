package nft

import (
	"encoding/json"
	"fmt"

	"github.com/nfmlabs/nfm/runtime"
)

// Token returns the view of a token, or nil when it does not exist.
func (c *Contract) Token(env *runtime.Env, tokenID string) (*JsonToken, error) {
	token, err := c.readToken(env.KV, tokenID)
	if err != nil || token == nil {
		return nil, err
	}
	meta, err := c.readMetadata(env.KV, tokenID)
	if err != nil {
		return nil, err
	}
	return &JsonToken{
		TokenID:            tokenID,
		OwnerID:            token.OwnerID,
		Metadata:           meta,
		ApprovedAccountIDs: token.ApprovedAccountIDs,
		Royalty:            token.Royalty,
	}, nil
}

// Transfer moves a token to the receiver and returns the pre transfer
// record. The freed approval storage goes back to the previous owner.
func (c *Contract) Transfer(env *runtime.Env, args *TransferArgs) (*Token, error) {
	err := assertOneUnit(env)
	if err != nil {
		return nil, err
	}
	previous, err := c.transfer(env, env.Predecessor, args.ReceiverID, args.TokenID, args.ApprovalID, args.Memo)
	if err != nil {
		return nil, err
	}
	err = c.refundApprovedAccounts(env, previous.OwnerID, previous.ApprovedAccountIDs)
	if err != nil {
		return nil, err
	}
	return previous, nil
}

// TransferCall transfers the token, then notifies the receiver
// contract and chains the resolution back to this contract. The local
// transfer commits with this call; only nft_resolve_transfer can undo
// it afterwards.
func (c *Contract) TransferCall(env *runtime.Env, args *TransferCallArgs) error {
	err := assertOneUnit(env)
	if err != nil {
		return err
	}
	previous, err := c.transfer(env, env.Predecessor, args.ReceiverID, args.TokenID, args.ApprovalID, args.Memo)
	if err != nil {
		return err
	}

	notify, err := env.Schedule(args.ReceiverID, "nft_on_transfer", &OnTransferArgs{
		SenderID:        env.Predecessor,
		PreviousOwnerID: previous.OwnerID,
		TokenID:         args.TokenID,
		Msg:             args.Msg,
	}, nil)
	if err != nil {
		return err
	}

	var authorizedID *string
	if env.Predecessor != previous.OwnerID {
		sender := env.Predecessor
		authorizedID = &sender
	}
	return env.Then(notify, "nft_resolve_transfer", &ResolveTransferArgs{
		AuthorizedID:       authorizedID,
		OwnerID:            previous.OwnerID,
		ReceiverID:         args.ReceiverID,
		TokenID:            args.TokenID,
		ApprovedAccountIDs: previous.ApprovedAccountIDs,
		Memo:               args.Memo,
	})
}

// ResolveTransfer inspects the receiver's nft_on_transfer verdict and
// either lets the transfer stand or rolls it back. It reports whether
// the receiver kept the token. State is re-read here: the token may
// have moved on or vanished between the two phases, in which case the
// transfer is treated as settled.
func (c *Contract) ResolveTransfer(env *runtime.Env, args *ResolveTransferArgs) (bool, error) {
	if env.Predecessor != env.ContractID {
		return false, ErrSelfCallOnly
	}
	if env.Result == nil {
		return false, fmt.Errorf("%w: no call result to resolve", ErrSelfCallOnly)
	}

	revert := false
	if env.Result.Success {
		// per the standard the hook returns whether the token
		// should go back to its previous owner
		var returnToken bool
		err := json.Unmarshal(env.Result.Value, &returnToken)
		revert = err != nil || returnToken
	}
	if !revert {
		err := c.refundApprovedAccounts(env, args.OwnerID, args.ApprovedAccountIDs)
		return true, err
	}

	token, err := c.readToken(env.KV, args.TokenID)
	if err != nil {
		return false, err
	}
	if token == nil || token.OwnerID != args.ReceiverID {
		// burned, or already moved on, nothing left to return
		err = c.refundApprovedAccounts(env, args.OwnerID, args.ApprovedAccountIDs)
		return true, err
	}

	err = c.removeTokenFromOwner(env.KV, args.ReceiverID, args.TokenID)
	if err != nil {
		return false, err
	}
	err = c.owners.Add(env.KV, args.OwnerID, args.TokenID)
	if err != nil {
		return false, err
	}

	// give the receiver back whatever approval storage they paid
	// for, then restore the original approvals onto the token
	err = c.refundApprovedAccounts(env, args.ReceiverID, token.ApprovedAccountIDs)
	if err != nil {
		return false, err
	}
	token.OwnerID = args.OwnerID
	token.ApprovedAccountIDs = args.ApprovedAccountIDs
	if token.ApprovedAccountIDs == nil {
		token.ApprovedAccountIDs = map[string]uint64{}
	}
	err = c.writeToken(env.KV, args.TokenID, token)
	if err != nil {
		return false, err
	}
	err = env.Emit(NewTransferEvent(nil, args.ReceiverID, args.OwnerID, args.Memo, args.TokenID))
	if err != nil {
		return false, err
	}
	return false, nil
}
