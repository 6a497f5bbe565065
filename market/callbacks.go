package market

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/nfmlabs/nfm/runtime"
)

// OnApprove is the approval notification from a token ledger, and the
// only way a sale gets listed. The predecessor is the ledger contract,
// the signer is the account that called approve there, so requiring
// owner == signer proves the lister owns the token and requiring
// predecessor != signer proves this really came through a ledger.
func (c *Contract) OnApprove(env *runtime.Env, args *OnApproveArgs) error {
	if env.Predecessor == env.Signer {
		return ErrCrossContractOnly
	}
	if args.OwnerID != env.Signer {
		return fmt.Errorf("%w: owner_id %s does not match signer", ErrUnauthorized, args.OwnerID)
	}

	credit, err := c.readCredit(env.KV, args.OwnerID)
	if err != nil {
		return err
	}
	sales, err := c.byOwner.Count(env.KV, args.OwnerID)
	if err != nil {
		return err
	}
	required := new(big.Int).Mul(big.NewInt(int64(sales+1)), env.StorageCost(storagePerSaleBytes))
	if credit.Cmp(required) < 0 {
		return fmt.Errorf("%w: requires %s, credited %s", ErrInsufficientStorage, required, credit)
	}

	var sa SaleArgs
	err = json.Unmarshal([]byte(args.Msg), &sa)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSaleArgs, err)
	}
	if _, err = runtime.ParseAmount(sa.SaleConditions); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSaleArgs, err)
	}

	ledger := env.Predecessor
	sale := &Sale{
		OwnerID:        args.OwnerID,
		ApprovalID:     args.ApprovalID,
		NFTContractID:  ledger,
		TokenID:        args.TokenID,
		SaleConditions: sa.SaleConditions,
	}
	key := saleKey(ledger, args.TokenID)
	err = c.writeSale(env.KV, key, sale)
	if err != nil {
		return err
	}
	err = c.byOwner.Add(env.KV, args.OwnerID, key)
	if err != nil {
		return err
	}
	err = c.byLedger.Add(env.KV, ledger, args.TokenID)
	if err != nil {
		return err
	}
	return env.Emit(NewSaleListedEvent(sale))
}
