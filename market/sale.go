package market

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/nfmlabs/nfm/runtime"
)

// RemoveSale delists the token and releases its storage slot back to
// the owner's free credit. Only the sale owner can remove it.
func (c *Contract) RemoveSale(env *runtime.Env, args *SaleRefArgs) error {
	err := assertOneUnit(env)
	if err != nil {
		return err
	}
	key := saleKey(args.NFTContractID, args.TokenID)
	sale, err := c.readSaleByKey(env.KV, key)
	if err != nil {
		return err
	}
	if sale == nil {
		return fmt.Errorf("%w: %s", ErrSaleNotFound, key)
	}
	if env.Predecessor != sale.OwnerID {
		return fmt.Errorf("%w: only the sale owner can remove it", ErrUnauthorized)
	}
	err = c.removeSale(env, key, sale)
	if err != nil {
		return err
	}
	return env.Emit(NewSaleRemovedEvent(sale))
}

// UpdatePrice replaces the asking price of a live sale.
func (c *Contract) UpdatePrice(env *runtime.Env, args *UpdatePriceArgs) error {
	err := assertOneUnit(env)
	if err != nil {
		return err
	}
	if _, err = runtime.ParseAmount(args.Price); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSaleArgs, err)
	}
	key := saleKey(args.NFTContractID, args.TokenID)
	sale, err := c.readSaleByKey(env.KV, key)
	if err != nil {
		return err
	}
	if sale == nil {
		return fmt.Errorf("%w: %s", ErrSaleNotFound, key)
	}
	if env.Predecessor != sale.OwnerID {
		return fmt.Errorf("%w: only the sale owner can update the price", ErrUnauthorized)
	}
	sale.SaleConditions = args.Price
	err = c.writeSale(env.KV, key, sale)
	if err != nil {
		return err
	}
	return env.Emit(NewSaleUpdatedEvent(sale))
}

// Offer buys the token at its asking price. The attached deposit must
// meet the price; a low offer fails whole, leaving the sale listed.
// On success the sale is delisted and the ledger is asked to move the
// token and report the payout split; the purchase settles in
// ResolvePurchase once that remote leg completes.
func (c *Contract) Offer(env *runtime.Env, args *SaleRefArgs) error {
	if env.Deposit.Sign() <= 0 {
		return fmt.Errorf("%w: offer requires an attached deposit", ErrInsufficientDeposit)
	}
	key := saleKey(args.NFTContractID, args.TokenID)
	sale, err := c.readSaleByKey(env.KV, key)
	if err != nil {
		return err
	}
	if sale == nil {
		return fmt.Errorf("%w: %s", ErrSaleNotFound, key)
	}
	buyer := env.Predecessor
	if buyer == sale.OwnerID {
		return ErrSelfPurchase
	}
	price, err := runtime.ParseAmount(sale.SaleConditions)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSaleArgs, err)
	}
	if env.Deposit.Cmp(price) < 0 {
		return fmt.Errorf("%w: asking price is %s", ErrInsufficientDeposit, price)
	}

	err = c.removeSale(env, key, sale)
	if err != nil {
		return err
	}
	transfer, err := env.Schedule(sale.NFTContractID, "nft_transfer_payout", map[string]interface{}{
		"receiver_id":    buyer,
		"token_id":       sale.TokenID,
		"approval_id":    sale.ApprovalID,
		"memo":           "payout from market",
		"balance":        env.Deposit.String(),
		"max_len_payout": maxPayoutRecipients,
	}, big.NewInt(1))
	if err != nil {
		return err
	}
	return env.Then(transfer, "resolve_purchase", &ResolvePurchaseArgs{
		BuyerID: buyer,
		Price:   env.Deposit.String(),
	})
}

type payoutEnvelope struct {
	Payout map[string]string `json:"payout"`
}

// ResolvePurchase settles an offer once the ledger leg completed. A
// successful leg with a sane payout pays every listed recipient; any
// other outcome refunds the buyer in full. Truncation in the royalty
// split may leave the payout one unit short of the price, that unit
// stays with the market. Returns the settled price either way.
func (c *Contract) ResolvePurchase(env *runtime.Env, args *ResolvePurchaseArgs) (*big.Int, error) {
	if env.Predecessor != env.ContractID {
		return nil, ErrSelfCallOnly
	}
	price, err := runtime.ParseAmount(args.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}

	payout := c.validPayout(env, price)
	if payout == nil {
		err = env.Pay(args.BuyerID, price)
		if err != nil {
			return nil, err
		}
		err = env.Emit(NewPurchaseRefundedEvent(args.BuyerID, price))
		if err != nil {
			return nil, err
		}
		return price, nil
	}
	for account, amount := range payout {
		err = env.Pay(account, amount)
		if err != nil {
			return nil, err
		}
	}
	err = env.Emit(NewPurchaseSettledEvent(args.BuyerID, price))
	if err != nil {
		return nil, err
	}
	return price, nil
}

// validPayout parses the remote result into a payable distribution, or
// nil when the purchase must be refunded instead. A distribution is
// payable when it has between one and maxPayoutRecipients entries, all
// amounts parse, and the total matches the price up to one unit of
// truncation slack.
func (c *Contract) validPayout(env *runtime.Env, price *big.Int) map[string]*big.Int {
	if env.Result == nil || !env.Result.Success {
		return nil
	}
	var envelope payoutEnvelope
	err := json.Unmarshal(env.Result.Value, &envelope)
	if err != nil {
		return nil
	}
	if len(envelope.Payout) == 0 || len(envelope.Payout) > maxPayoutRecipients {
		return nil
	}
	payout := make(map[string]*big.Int, len(envelope.Payout))
	total := new(big.Int)
	for account, raw := range envelope.Payout {
		amount, err := runtime.ParseAmount(raw)
		if err != nil {
			return nil
		}
		payout[account] = amount
		total.Add(total, amount)
	}
	slack := new(big.Int).Sub(price, total)
	if slack.Sign() < 0 || slack.Cmp(big.NewInt(1)) > 0 {
		return nil
	}
	return payout
}

func (c *Contract) removeSale(env *runtime.Env, key string, sale *Sale) error {
	err := env.KV.Delete([]byte(prefixSale + key))
	if err != nil {
		return err
	}
	_, err = c.byOwner.Remove(env.KV, sale.OwnerID, key)
	if err != nil {
		return err
	}
	_, err = c.byLedger.Remove(env.KV, sale.NFTContractID, sale.TokenID)
	return err
}
