package nft

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nfmlabs/nfm/runtime"
	"github.com/nfmlabs/nfm/store"
)

const (
	prefixToken    = "NFT:TOKEN:"
	prefixMetadata = "NFT:METADATA:"
	prefixOwner    = "NFT:OWNER:"
)

// Contract is the token ledger. All persistent state lives in the
// store transaction of the current call; the struct itself only holds
// configuration.
type Contract struct {
	account string
	meta    ContractMetadata
	owners  *store.SetIndex
}

func New(account string, meta ContractMetadata) *Contract {
	if meta.Spec == "" {
		meta.Spec = MetadataSpec
	}
	return &Contract{
		account: account,
		meta:    meta,
		owners:  store.NewSetIndex(prefixOwner),
	}
}

func (c *Contract) ID() string {
	return c.account
}

type MintArgs struct {
	TokenID    string            `json:"token_id"`
	Metadata   *TokenMetadata    `json:"metadata"`
	ReceiverID string            `json:"receiver_id"`
	Royalty    map[string]uint32 `json:"perpetual_royalties,omitempty"`
}

type TokenArgs struct {
	TokenID string `json:"token_id"`
}

type TransferArgs struct {
	ReceiverID string  `json:"receiver_id"`
	TokenID    string  `json:"token_id"`
	ApprovalID *uint64 `json:"approval_id,omitempty"`
	Memo       *string `json:"memo,omitempty"`
}

type TransferCallArgs struct {
	ReceiverID string  `json:"receiver_id"`
	TokenID    string  `json:"token_id"`
	ApprovalID *uint64 `json:"approval_id,omitempty"`
	Memo       *string `json:"memo,omitempty"`
	Msg        string  `json:"msg"`
}

type ResolveTransferArgs struct {
	AuthorizedID       *string           `json:"authorized_id,omitempty"`
	OwnerID            string            `json:"owner_id"`
	ReceiverID         string            `json:"receiver_id"`
	TokenID            string            `json:"token_id"`
	ApprovedAccountIDs map[string]uint64 `json:"approved_account_ids"`
	Memo               *string           `json:"memo,omitempty"`
}

type ApproveArgs struct {
	TokenID   string  `json:"token_id"`
	AccountID string  `json:"account_id"`
	Msg       *string `json:"msg,omitempty"`
}

type IsApprovedArgs struct {
	TokenID           string  `json:"token_id"`
	ApprovedAccountID string  `json:"approved_account_id"`
	ApprovalID        *uint64 `json:"approval_id,omitempty"`
}

type RevokeArgs struct {
	TokenID   string `json:"token_id"`
	AccountID string `json:"account_id"`
}

type PayoutArgs struct {
	TokenID      string `json:"token_id"`
	Balance      string `json:"balance"`
	MaxLenPayout int    `json:"max_len_payout"`
}

type TransferPayoutArgs struct {
	ReceiverID   string  `json:"receiver_id"`
	TokenID      string  `json:"token_id"`
	ApprovalID   *uint64 `json:"approval_id,omitempty"`
	Memo         *string `json:"memo,omitempty"`
	Balance      string  `json:"balance"`
	MaxLenPayout int     `json:"max_len_payout"`
}

type TokensArgs struct {
	FromIndex *string `json:"from_index,omitempty"`
	Limit     *int    `json:"limit,omitempty"`
}

type TokensForOwnerArgs struct {
	AccountID string  `json:"account_id"`
	FromIndex *string `json:"from_index,omitempty"`
	Limit     *int    `json:"limit,omitempty"`
}

type SupplyForOwnerArgs struct {
	AccountID string `json:"account_id"`
}

// OnTransferArgs is the payload of the nft_on_transfer notification
// sent to a receiving contract during nft_transfer_call.
type OnTransferArgs struct {
	SenderID        string `json:"sender_id"`
	PreviousOwnerID string `json:"previous_owner_id"`
	TokenID         string `json:"token_id"`
	Msg             string `json:"msg"`
}

// OnApproveArgs is the payload of the nft_on_approve notification.
type OnApproveArgs struct {
	TokenID    string `json:"token_id"`
	OwnerID    string `json:"owner_id"`
	ApprovalID uint64 `json:"approval_id"`
	Msg        string `json:"msg"`
}

func (c *Contract) Invoke(ctx context.Context, env *runtime.Env, method string, args []byte) ([]byte, error) {
	switch method {
	case "nft_mint":
		var a MintArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, c.Mint(env, &a)
	case "nft_token":
		var a TokenArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		token, err := c.Token(env, a.TokenID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(token)
	case "nft_transfer":
		var a TransferArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		_, err := c.Transfer(env, &a)
		return nil, err
	case "nft_transfer_call":
		var a TransferCallArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, c.TransferCall(env, &a)
	case "nft_resolve_transfer":
		var a ResolveTransferArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		kept, err := c.ResolveTransfer(env, &a)
		if err != nil {
			return nil, err
		}
		return json.Marshal(kept)
	case "nft_approve":
		var a ApproveArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, c.Approve(env, &a)
	case "nft_is_approved":
		var a IsApprovedArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		approved, err := c.IsApproved(env, &a)
		if err != nil {
			return nil, err
		}
		return json.Marshal(approved)
	case "nft_revoke":
		var a RevokeArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, c.Revoke(env, &a)
	case "nft_revoke_all":
		var a TokenArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, c.RevokeAll(env, a.TokenID)
	case "nft_payout":
		var a PayoutArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		payout, err := c.Payout(env, &a)
		if err != nil {
			return nil, err
		}
		return json.Marshal(payout)
	case "nft_transfer_payout":
		var a TransferPayoutArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		payout, err := c.TransferPayout(env, &a)
		if err != nil {
			return nil, err
		}
		return json.Marshal(payout)
	case "nft_total_supply":
		supply, err := c.TotalSupply(env)
		if err != nil {
			return nil, err
		}
		return json.Marshal(supply)
	case "nft_tokens":
		var a TokensArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		tokens, err := c.Tokens(env, &a)
		if err != nil {
			return nil, err
		}
		return json.Marshal(tokens)
	case "nft_tokens_for_owner":
		var a TokensForOwnerArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		tokens, err := c.TokensForOwner(env, &a)
		if err != nil {
			return nil, err
		}
		return json.Marshal(tokens)
	case "nft_supply_for_owner":
		var a SupplyForOwnerArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		supply, err := c.SupplyForOwner(env, a.AccountID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(supply)
	case "nft_metadata":
		return json.Marshal(c.meta)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
}

func parseArgs(raw []byte, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	err := json.Unmarshal(raw, v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}
