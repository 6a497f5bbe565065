package market

import "errors"

// Delimiter joins the ledger contract id and the token id into the
// composite sale key.
const Delimiter = "."

// storagePerSaleBytes is the persistent footprint charged per live
// sale; the price per sale is this times the per byte cost oracle.
const storagePerSaleBytes = 1000

// maxPayoutRecipients bounds how many accounts one purchase
// resolution is willing to pay.
const maxPayoutRecipients = 10

var (
	ErrSaleNotFound        = errors.New("market: sale not found")
	ErrUnauthorized        = errors.New("market: unauthorized")
	ErrInsufficientStorage = errors.New("market: insufficient storage deposit")
	ErrInsufficientDeposit = errors.New("market: insufficient deposit")
	ErrInvalidSaleArgs     = errors.New("market: invalid sale arguments")
	ErrSelfPurchase        = errors.New("market: cannot offer on your own sale")
	ErrCrossContractOnly   = errors.New("market: callable only as a cross contract call")
	ErrSelfCallOnly        = errors.New("market: only the contract itself can call this method")
	ErrInvalidArgs         = errors.New("market: invalid arguments")
	ErrUnknownMethod       = errors.New("market: unknown method")
)

// Sale is one listing. ApprovalID is the grant the token owner gave
// this market on the ledger; it must still be live at purchase time
// or the remote transfer leg fails and the buyer is refunded.
// SaleConditions is the asking price, a decimal string of the
// smallest asset unit.
type Sale struct {
	OwnerID        string `json:"owner_id"`
	ApprovalID     uint64 `json:"approval_id"`
	NFTContractID  string `json:"nft_contract_id"`
	TokenID        string `json:"token_id"`
	SaleConditions string `json:"sale_conditions"`
}

// SaleArgs is the payload carried in the approval notification msg.
type SaleArgs struct {
	SaleConditions string `json:"sale_conditions"`
}

func saleKey(nftContractID, tokenID string) string {
	return nftContractID + Delimiter + tokenID
}
