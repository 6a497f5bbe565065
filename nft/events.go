package nft

import "github.com/nfmlabs/nfm/runtime"

const (
	EventMint     = "nft_mint"
	EventTransfer = "nft_transfer"
)

type MintEventData struct {
	OwnerID  string   `json:"owner_id"`
	TokenIDs []string `json:"token_ids"`
}

type TransferEventData struct {
	AuthorizedID *string  `json:"authorized_id,omitempty"`
	OldOwnerID   string   `json:"old_owner_id"`
	NewOwnerID   string   `json:"new_owner_id"`
	TokenIDs     []string `json:"token_ids"`
	Memo         *string  `json:"memo,omitempty"`
}

func NewMintEvent(ownerID string, tokenIDs ...string) runtime.Event {
	return runtime.Event{
		Standard: StandardName,
		Version:  MetadataSpec,
		Event:    EventMint,
		Data: []MintEventData{{
			OwnerID:  ownerID,
			TokenIDs: tokenIDs,
		}},
	}
}

func NewTransferEvent(authorizedID *string, oldOwnerID, newOwnerID string, memo *string, tokenIDs ...string) runtime.Event {
	return runtime.Event{
		Standard: StandardName,
		Version:  MetadataSpec,
		Event:    EventTransfer,
		Data: []TransferEventData{{
			AuthorizedID: authorizedID,
			OldOwnerID:   oldOwnerID,
			NewOwnerID:   newOwnerID,
			TokenIDs:     tokenIDs,
			Memo:         memo,
		}},
	}
}
