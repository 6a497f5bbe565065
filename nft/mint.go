package nft

import (
	"fmt"

	"github.com/MixinNetwork/mixin/common"
	"github.com/nfmlabs/nfm/runtime"
)

// Mint records a brand new token owned by the receiver. The royalty
// table is stored verbatim; the owner's implicit share is computed
// lazily at payout time, never here. The attached deposit must cover
// the storage footprint of the new records, any excess is returned.
func (c *Contract) Mint(env *runtime.Env, args *MintArgs) error {
	if args.TokenID == "" || args.ReceiverID == "" {
		return fmt.Errorf("%w: token_id and receiver_id are required", ErrInvalidArgs)
	}
	if len(args.Royalty) > MaxRoyaltyEntries {
		return fmt.Errorf("%w: %d entries, at most %d", ErrTooManyRoyalties, len(args.Royalty), MaxRoyaltyEntries)
	}
	var totalBps uint32
	for _, bps := range args.Royalty {
		totalBps += bps
	}
	if totalBps > 10000 {
		return fmt.Errorf("%w: royalty shares sum to %d basis points", ErrInvalidArgs, totalBps)
	}

	existing, err := c.readToken(env.KV, args.TokenID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateToken, args.TokenID)
	}

	token := &Token{
		OwnerID:            args.ReceiverID,
		ApprovedAccountIDs: map[string]uint64{},
		NextApprovalID:     0,
		Royalty:            args.Royalty,
	}
	meta := args.Metadata
	if meta == nil {
		meta = &TokenMetadata{}
	}

	tokenVal := common.MsgpackMarshalPanic(token)
	metaVal := common.MsgpackMarshalPanic(meta)
	storageUsed := int64(len(tokenVal)+len(metaVal)) + 2*int64(len(args.TokenID)) + int64(len(args.ReceiverID))
	err = refundExcessDeposit(env, storageUsed)
	if err != nil {
		return err
	}

	err = c.writeToken(env.KV, args.TokenID, token)
	if err != nil {
		return err
	}
	err = c.writeMetadata(env.KV, args.TokenID, meta)
	if err != nil {
		return err
	}
	err = c.owners.Add(env.KV, args.ReceiverID, args.TokenID)
	if err != nil {
		return err
	}
	return env.Emit(NewMintEvent(args.ReceiverID, args.TokenID))
}
