package nft

import "errors"

const (
	StandardName = "nep171"
	MetadataSpec = "nft-1.0.0"

	// royalty tables are capped so a payout never exceeds what one
	// resolution can distribute
	MaxRoyaltyEntries = 6
)

var (
	ErrTokenNotFound           = errors.New("nft: token not found")
	ErrDuplicateToken          = errors.New("nft: token already exists")
	ErrUnauthorized            = errors.New("nft: unauthorized")
	ErrSelfTransfer            = errors.New("nft: owner and receiver must differ")
	ErrStaleApproval           = errors.New("nft: stale approval id")
	ErrTooManyRoyalties        = errors.New("nft: royalty table too large")
	ErrTooManyPayoutRecipients = errors.New("nft: too many payout recipients")
	ErrInsufficientDeposit     = errors.New("nft: insufficient deposit")
	ErrSelfCallOnly            = errors.New("nft: only the contract itself can call this method")
	ErrInvalidArgs             = errors.New("nft: invalid arguments")
	ErrUnknownMethod           = errors.New("nft: unknown method")
)

// Token is the ledger record, the source of truth for ownership.
// ApprovedAccountIDs maps an approver account to the approval id it
// was granted; ids come from NextApprovalID which only ever grows, so
// a revoked and re-approved account always gets a fresh id. Royalty
// maps an account to its basis points share, fixed at mint time.
type Token struct {
	OwnerID            string
	ApprovedAccountIDs map[string]uint64
	NextApprovalID     uint64
	Royalty            map[string]uint32
}

// TokenMetadata is written once at mint and never mutated.
type TokenMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Media       string `json:"media,omitempty"`
	Copies      uint64 `json:"copies,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Extra       string `json:"extra,omitempty"`
}

type ContractMetadata struct {
	Spec    string `json:"spec"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Icon    string `json:"icon,omitempty"`
	BaseURI string `json:"base_uri,omitempty"`
}

// JsonToken is the view representation returned by queries.
type JsonToken struct {
	TokenID            string            `json:"token_id"`
	OwnerID            string            `json:"owner_id"`
	Metadata           *TokenMetadata    `json:"metadata,omitempty"`
	ApprovedAccountIDs map[string]uint64 `json:"approved_account_ids"`
	Royalty            map[string]uint32 `json:"royalty,omitempty"`
}

// Payout maps each recipient account to the amount it should be paid,
// amounts as decimal strings of the smallest asset unit.
type Payout struct {
	Payout map[string]string `json:"payout"`
}
