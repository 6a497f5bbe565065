package market

import (
	"fmt"
	"math/big"

	"github.com/nfmlabs/nfm/runtime"
	"github.com/nfmlabs/nfm/store"
)

// MinimumBalance is the deposit covering one sale, derived from the
// per byte cost oracle at call time.
func (c *Contract) MinimumBalance(env *runtime.Env) *big.Int {
	return env.StorageCost(storagePerSaleBytes)
}

// StorageDeposit credits the attached deposit to the target account,
// the predecessor unless account_id says otherwise. The deposit must
// cover at least one sale.
func (c *Contract) StorageDeposit(env *runtime.Env, accountID *string) error {
	target := env.Predecessor
	if accountID != nil {
		target = *accountID
	}
	minimum := c.MinimumBalance(env)
	if env.Deposit.Cmp(minimum) < 0 {
		return fmt.Errorf("%w: requires %s", ErrInsufficientDeposit, minimum)
	}
	credit, err := c.readCredit(env.KV, target)
	if err != nil {
		return err
	}
	return c.writeCredit(env.KV, target, credit.Add(credit, env.Deposit))
}

// StorageWithdraw pays back the predecessor's credit beyond what the
// account's live sales still hold. Withdrawing with no free credit is
// a no-op.
func (c *Contract) StorageWithdraw(env *runtime.Env) error {
	err := assertOneUnit(env)
	if err != nil {
		return err
	}
	credit, err := c.readCredit(env.KV, env.Predecessor)
	if err != nil {
		return err
	}
	sales, err := c.byOwner.Count(env.KV, env.Predecessor)
	if err != nil {
		return err
	}
	held := new(big.Int).Mul(big.NewInt(int64(sales)), env.StorageCost(storagePerSaleBytes))
	free := new(big.Int).Sub(credit, held)
	if free.Sign() <= 0 {
		return nil
	}
	err = c.writeCredit(env.KV, env.Predecessor, held)
	if err != nil {
		return err
	}
	return env.Pay(env.Predecessor, free)
}

// StorageBalanceOf returns the account's storage credit, zero when the
// account never deposited.
func (c *Contract) StorageBalanceOf(env *runtime.Env, accountID string) (*big.Int, error) {
	return c.readCredit(env.KV, accountID)
}

func (c *Contract) readCredit(kv store.KV, account string) (*big.Int, error) {
	val, err := kv.Get([]byte(prefixStorageCredit + account))
	if err != nil || val == nil {
		return new(big.Int), err
	}
	credit, ok := new(big.Int).SetString(string(val), 10)
	if !ok {
		return nil, fmt.Errorf("market: malformed storage credit %q for %s", val, account)
	}
	return credit, nil
}

func (c *Contract) writeCredit(kv store.KV, account string, credit *big.Int) error {
	key := []byte(prefixStorageCredit + account)
	if credit.Sign() == 0 {
		return kv.Delete(key)
	}
	return kv.Set(key, []byte(credit.String()))
}

func assertOneUnit(env *runtime.Env) error {
	if env.Deposit.Cmp(big.NewInt(1)) != 0 {
		return fmt.Errorf("%w: requires an attached deposit of exactly 1", ErrInsufficientDeposit)
	}
	return nil
}
