package runtime

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/gofrs/uuid"
	"github.com/nfmlabs/nfm/store"
)

var ErrReadOnlyCall = fmt.Errorf("runtime: mutation inside a view call")

// Env is the execution environment handed to a contract entry point.
// It carries the storage transaction of the current call, the caller
// identities, the attached deposit and, for resolution callbacks, the
// result of the triggering call. Everything an entry point does goes
// through its Env, there is no ambient contract state.
type Env struct {
	KV          store.KV
	ContractID  string
	Predecessor string
	Signer      string
	Deposit     *big.Int
	Result      *Result

	group     *Group
	now       time.Time
	seq       int64
	scheduled []*Call
	readonly  bool
}

func (e *Env) Now() time.Time {
	return e.now
}

// Schedule queues an asynchronous call to another contract. The call
// only becomes visible if the current entry point commits; its
// attached deposit is debited from this contract at commit time.
func (e *Env) Schedule(target, method string, args interface{}, deposit *big.Int) (*Call, error) {
	if e.readonly {
		return nil, ErrReadOnlyCall
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	dep := "0"
	if deposit != nil {
		dep = deposit.String()
	}
	e.seq++
	c := &Call{
		Id:          uuid.Must(uuid.NewV4()).String(),
		Target:      target,
		Method:      method,
		Args:        raw,
		Deposit:     dep,
		Predecessor: e.ContractID,
		Signer:      e.Signer,
		State:       CallStatePending,
		CreatedAt:   e.now.Add(time.Duration(e.seq)),
	}
	e.scheduled = append(e.scheduled, c)
	return c, nil
}

// Then chains a resolution callback on c, directed back at this
// contract. The callback runs exactly once, after c completes, with
// c's Result attached.
func (e *Env) Then(c *Call, method string, args interface{}) error {
	if e.readonly {
		return ErrReadOnlyCall
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	e.seq++
	c.Callback = &Call{
		Id:          uuid.Must(uuid.NewV4()).String(),
		Target:      e.ContractID,
		Method:      method,
		Args:        raw,
		Deposit:     "0",
		Predecessor: e.ContractID,
		Signer:      e.Signer,
		State:       CallStatePending,
		CreatedAt:   e.now.Add(time.Duration(e.seq)),
	}
	return nil
}

// Pay transfers the native asset from this contract to account.
func (e *Env) Pay(account string, amount *big.Int) error {
	if e.readonly {
		return ErrReadOnlyCall
	}
	return payBalance(e.KV, e.ContractID, account, amount)
}

// Emit appends an event to the log sink.
func (e *Env) Emit(ev Event) error {
	if e.readonly {
		return ErrReadOnlyCall
	}
	e.seq++
	return writeEvent(e.KV, e.ContractID, ev, e.now.Add(time.Duration(e.seq)))
}

// CostPerByte is the storage cost oracle.
func (e *Env) CostPerByte() *big.Int {
	return new(big.Int).Set(e.group.costPerByte)
}

// StorageCost returns nbytes * CostPerByte.
func (e *Env) StorageCost(nbytes int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(nbytes), e.group.costPerByte)
}
