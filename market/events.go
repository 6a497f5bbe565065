package market

import (
	"math/big"

	"github.com/nfmlabs/nfm/runtime"
)

const (
	StandardName = "nfm-market"
	EventVersion = "1.0.0"

	EventSaleListed       = "sale_listed"
	EventSaleUpdated      = "sale_updated"
	EventSaleRemoved      = "sale_removed"
	EventPurchaseSettled  = "purchase_settled"
	EventPurchaseRefunded = "purchase_refunded"
)

type SaleEventData struct {
	OwnerID        string `json:"owner_id"`
	NFTContractID  string `json:"nft_contract_id"`
	TokenID        string `json:"token_id"`
	SaleConditions string `json:"sale_conditions"`
}

type PurchaseEventData struct {
	BuyerID string `json:"buyer_id"`
	Price   string `json:"price"`
}

func newSaleEvent(event string, sale *Sale) runtime.Event {
	return runtime.Event{
		Standard: StandardName,
		Version:  EventVersion,
		Event:    event,
		Data: []SaleEventData{{
			OwnerID:        sale.OwnerID,
			NFTContractID:  sale.NFTContractID,
			TokenID:        sale.TokenID,
			SaleConditions: sale.SaleConditions,
		}},
	}
}

func NewSaleListedEvent(sale *Sale) runtime.Event {
	return newSaleEvent(EventSaleListed, sale)
}

func NewSaleUpdatedEvent(sale *Sale) runtime.Event {
	return newSaleEvent(EventSaleUpdated, sale)
}

func NewSaleRemovedEvent(sale *Sale) runtime.Event {
	return newSaleEvent(EventSaleRemoved, sale)
}

func NewPurchaseSettledEvent(buyerID string, price *big.Int) runtime.Event {
	return runtime.Event{
		Standard: StandardName,
		Version:  EventVersion,
		Event:    EventPurchaseSettled,
		Data:     []PurchaseEventData{{BuyerID: buyerID, Price: price.String()}},
	}
}

func NewPurchaseRefundedEvent(buyerID string, price *big.Int) runtime.Event {
	return runtime.Event{
		Standard: StandardName,
		Version:  EventVersion,
		Event:    EventPurchaseRefunded,
		Data:     []PurchaseEventData{{BuyerID: buyerID, Price: price.String()}},
	}
}
