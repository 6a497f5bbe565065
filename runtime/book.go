package runtime

import (
	"fmt"
	"math/big"

	"github.com/nfmlabs/nfm/store"
)

const prefixBalance = "BALANCE:"

var ErrInsufficientBalance = fmt.Errorf("runtime: insufficient balance")

// The book tracks the native asset funds held inside the runtime on
// behalf of every account. Attached deposits on submitted calls enter
// from outside, payouts and refunds accumulate here.

func ReadBalance(kv store.KV, account string) (*big.Int, error) {
	val, err := kv.Get([]byte(prefixBalance + account))
	if err != nil || val == nil {
		return new(big.Int), err
	}
	amt, ok := new(big.Int).SetString(string(val), 10)
	if !ok {
		panic(string(val))
	}
	return amt, nil
}

func creditBalance(kv store.KV, account string, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return nil
	}
	old, err := ReadBalance(kv, account)
	if err != nil {
		return err
	}
	sum := new(big.Int).Add(old, amount)
	return kv.Set([]byte(prefixBalance+account), []byte(sum.String()))
}

func debitBalance(kv store.KV, account string, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return nil
	}
	old, err := ReadBalance(kv, account)
	if err != nil {
		return err
	}
	if old.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, account, old, amount)
	}
	left := new(big.Int).Sub(old, amount)
	if left.Sign() == 0 {
		return kv.Delete([]byte(prefixBalance + account))
	}
	return kv.Set([]byte(prefixBalance+account), []byte(left.String()))
}

func payBalance(kv store.KV, from, to string, amount *big.Int) error {
	err := debitBalance(kv, from, amount)
	if err != nil {
		return err
	}
	return creditBalance(kv, to, amount)
}
