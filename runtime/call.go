package runtime

import (
	"errors"
	"math/big"
	"time"

	"github.com/MixinNetwork/mixin/common"
	"github.com/nfmlabs/nfm/store"
)

const (
	CallStatePending = 10
	CallStateDone    = 11

	prefixCallPayload = "CALL:PAYLOAD:"
	prefixCallState   = "CALL:STATE:"
)

var errScanDone = errors.New("runtime: scan done")

// Result carries the outcome of a completed call into its chained
// resolution callback. Value holds the JSON reply of the call when it
// succeeded and the failure message otherwise.
type Result struct {
	Success bool
	Value   []byte
}

// Call is one scheduled invocation, the unit the group loop executes.
// Deposit is an integer string of the smallest asset unit. Callback,
// when set, is enqueued exactly once after this call completes, with
// the Result attached.
type Call struct {
	Id          string
	Target      string
	Method      string
	Args        []byte
	Deposit     string
	Predecessor string
	Signer      string
	Result      *Result
	Callback    *Call
	State       int
	CreatedAt   time.Time
}

func (c *Call) DepositAmount() *big.Int {
	if c.Deposit == "" {
		return new(big.Int)
	}
	amt, ok := new(big.Int).SetString(c.Deposit, 10)
	if !ok {
		panic(c.Deposit)
	}
	return amt
}

func writeCall(kv store.KV, c *Call) error {
	err := resetOldCall(kv, c)
	if err != nil {
		return err
	}
	key := []byte(prefixCallPayload + c.Id)
	val := common.MsgpackMarshalPanic(c)
	err = kv.Set(key, val)
	if err != nil {
		return err
	}
	return kv.Set(buildCallTimedKey(c), []byte{1})
}

func readCall(kv store.KV, id string) (*Call, error) {
	val, err := kv.Get([]byte(prefixCallPayload + id))
	if err != nil || val == nil {
		return nil, err
	}
	var c Call
	err = common.MsgpackUnmarshal(val, &c)
	return &c, err
}

func listCalls(kv store.KV, state, limit int) ([]*Call, error) {
	prefix := []byte(callStatePrefix(state))
	var calls []*Call
	err := kv.Scan(prefix, func(key, _ []byte) error {
		id := string(key[len(prefix)+8:])
		c, err := readCall(kv, id)
		if err != nil {
			return err
		}
		calls = append(calls, c)
		if limit > 0 && len(calls) == limit {
			return errScanDone
		}
		return nil
	})
	if err == errScanDone {
		err = nil
	}
	return calls, err
}

func resetOldCall(kv store.KV, c *Call) error {
	old, err := readCall(kv, c.Id)
	if err != nil || old == nil {
		return err
	}
	if old.State == c.State {
		return nil
	}
	return kv.Delete(buildCallTimedKey(old))
}

func buildCallTimedKey(c *Call) []byte {
	prefix := callStatePrefix(c.State)
	key := append([]byte(prefix), store.TimeToBytes(c.CreatedAt)...)
	return append(key, []byte(c.Id)...)
}

func callStatePrefix(state int) string {
	prefix := prefixCallState
	switch state {
	case CallStatePending:
		return prefix + "pendingg"
	case CallStateDone:
		return prefix + "finished"
	}
	panic(state)
}
