package market

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MixinNetwork/mixin/common"
	"github.com/nfmlabs/nfm/runtime"
	"github.com/nfmlabs/nfm/store"
)

const (
	prefixSale           = "MARKET:SALE:"
	prefixSalesByOwner   = "MARKET:SALEOWNER:"
	prefixTokensByLedger = "MARKET:SALECONTRACT:"
	prefixStorageCredit  = "MARKET:STORAGE:"
)

// Contract is the marketplace. It escrows no funds beyond the instant
// of a purchase: an offer's deposit is either distributed by the
// resolution callback or refunded to the buyer in full.
type Contract struct {
	account  string
	byOwner  *store.SetIndex
	byLedger *store.SetIndex
}

func New(account string) *Contract {
	return &Contract{
		account:  account,
		byOwner:  store.NewSetIndex(prefixSalesByOwner),
		byLedger: store.NewSetIndex(prefixTokensByLedger),
	}
}

func (c *Contract) ID() string {
	return c.account
}

type StorageDepositArgs struct {
	AccountID *string `json:"account_id,omitempty"`
}

type StorageBalanceArgs struct {
	AccountID string `json:"account_id"`
}

type OnApproveArgs struct {
	TokenID    string `json:"token_id"`
	OwnerID    string `json:"owner_id"`
	ApprovalID uint64 `json:"approval_id"`
	Msg        string `json:"msg"`
}

type SaleRefArgs struct {
	NFTContractID string `json:"nft_contract_id"`
	TokenID       string `json:"token_id"`
}

type UpdatePriceArgs struct {
	NFTContractID string `json:"nft_contract_id"`
	TokenID       string `json:"token_id"`
	Price         string `json:"price"`
}

type ResolvePurchaseArgs struct {
	BuyerID string `json:"buyer_id"`
	Price   string `json:"price"`
}

type OwnerPageArgs struct {
	AccountID string  `json:"account_id"`
	FromIndex *string `json:"from_index,omitempty"`
	Limit     *int    `json:"limit,omitempty"`
}

type LedgerPageArgs struct {
	NFTContractID string  `json:"nft_contract_id"`
	FromIndex     *string `json:"from_index,omitempty"`
	Limit         *int    `json:"limit,omitempty"`
}

type GetSaleArgs struct {
	NFTContractToken string `json:"nft_contract_token"`
}

func (c *Contract) Invoke(ctx context.Context, env *runtime.Env, method string, args []byte) ([]byte, error) {
	switch method {
	case "storage_deposit":
		var a StorageDepositArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, c.StorageDeposit(env, a.AccountID)
	case "storage_withdraw":
		return nil, c.StorageWithdraw(env)
	case "storage_minimum_balance":
		return json.Marshal(c.MinimumBalance(env).String())
	case "storage_balance_of":
		var a StorageBalanceArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		credit, err := c.StorageBalanceOf(env, a.AccountID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(credit.String())
	case "nft_on_approve":
		var a OnApproveArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, c.OnApprove(env, &a)
	case "remove_sale":
		var a SaleRefArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, c.RemoveSale(env, &a)
	case "update_price":
		var a UpdatePriceArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, c.UpdatePrice(env, &a)
	case "offer":
		var a SaleRefArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, c.Offer(env, &a)
	case "resolve_purchase":
		var a ResolvePurchaseArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		price, err := c.ResolvePurchase(env, &a)
		if err != nil {
			return nil, err
		}
		return json.Marshal(price.String())
	case "get_supply_sales":
		supply, err := c.SupplySales(env)
		if err != nil {
			return nil, err
		}
		return json.Marshal(supply)
	case "get_supply_by_owner_id":
		var a StorageBalanceArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		supply, err := c.SupplyByOwnerID(env, a.AccountID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(supply)
	case "get_sales_by_owner_id":
		var a OwnerPageArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		sales, err := c.SalesByOwnerID(env, &a)
		if err != nil {
			return nil, err
		}
		return json.Marshal(sales)
	case "get_supply_by_nft_contract_id":
		var a LedgerPageArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		supply, err := c.SupplyByNFTContractID(env, a.NFTContractID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(supply)
	case "get_sales_by_nft_contract_id":
		var a LedgerPageArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		sales, err := c.SalesByNFTContractID(env, &a)
		if err != nil {
			return nil, err
		}
		return json.Marshal(sales)
	case "get_sale":
		var a GetSaleArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		sale, err := c.readSaleByKey(env.KV, a.NFTContractToken)
		if err != nil {
			return nil, err
		}
		return json.Marshal(sale)
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

func (c *Contract) readSaleByKey(kv store.KV, key string) (*Sale, error) {
	val, err := kv.Get([]byte(prefixSale + key))
	if err != nil || val == nil {
		return nil, err
	}
	var sale Sale
	err = common.MsgpackUnmarshal(val, &sale)
	return &sale, err
}

func (c *Contract) writeSale(kv store.KV, key string, sale *Sale) error {
	return kv.Set([]byte(prefixSale+key), common.MsgpackMarshalPanic(sale))
}
