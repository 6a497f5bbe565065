package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/gofrs/uuid"
	"github.com/nfmlabs/nfm/store"
)

// Handler is a registered contract. Invoke dispatches one entry point
// and returns its JSON reply; a returned error aborts the call and
// reverts every local mutation it made.
type Handler interface {
	ID() string
	Invoke(ctx context.Context, env *Env, method string, args []byte) ([]byte, error)
}

// Group executes the registered contracts over a shared store. Calls
// run strictly one at a time, so a contract never races itself; the
// only concurrency is the gap between a call and its resolution
// callback, during which any number of other calls may commit.
type Group struct {
	store       store.Store
	clock       *Clock
	handlers    map[string]Handler
	costPerByte *big.Int
	interval    time.Duration
}

func BuildGroup(ctx context.Context, db store.Store, conf *Configuration) (*Group, error) {
	cost, ok := new(big.Int).SetString(conf.StorageCostPerByte, 10)
	if !ok || cost.Sign() <= 0 {
		return nil, fmt.Errorf("invalid storage cost per byte %s", conf.StorageCostPerByte)
	}
	clock, err := NewClock(db)
	if err != nil {
		return nil, err
	}
	return &Group{
		store:       db,
		clock:       clock,
		handlers:    make(map[string]Handler),
		costPerByte: cost,
		interval:    time.Duration(conf.LoopIntervalMs) * time.Millisecond,
	}, nil
}

func (grp *Group) AddContract(h Handler) {
	grp.handlers[h.ID()] = h
}

// Submit enqueues a top level call signed by signer. The attached
// deposit enters the book from outside when the call executes.
func (grp *Group) Submit(ctx context.Context, signer, target, method string, args interface{}, deposit *big.Int) (string, error) {
	if grp.handlers[target] == nil {
		return "", fmt.Errorf("unknown contract %s", target)
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	dep := "0"
	if deposit != nil {
		if deposit.Sign() < 0 {
			return "", fmt.Errorf("negative deposit %s", deposit)
		}
		dep = deposit.String()
	}
	c := &Call{
		Id:          uuid.Must(uuid.NewV4()).String(),
		Target:      target,
		Method:      method,
		Args:        raw,
		Deposit:     dep,
		Predecessor: signer,
		Signer:      signer,
		State:       CallStatePending,
		CreatedAt:   grp.clock.Now(),
	}
	err = grp.store.Update(func(kv store.KV) error {
		return writeCall(kv, c)
	})
	if err != nil {
		return "", err
	}
	return c.Id, nil
}

// View runs a read only entry point against the current snapshot.
func (grp *Group) View(ctx context.Context, caller, target, method string, args interface{}) ([]byte, error) {
	h := grp.handlers[target]
	if h == nil {
		return nil, fmt.Errorf("unknown contract %s", target)
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	var reply []byte
	err = grp.store.View(func(kv store.KV) error {
		env := &Env{
			KV:          kv,
			ContractID:  target,
			Predecessor: caller,
			Signer:      caller,
			Deposit:     new(big.Int),
			group:       grp,
			now:         time.Now(),
			readonly:    true,
		}
		reply, err = h.Invoke(ctx, env, method, raw)
		return err
	})
	return reply, err
}

// ReadCall returns the persisted call record for id.
func (grp *Group) ReadCall(id string) (*Call, error) {
	var c *Call
	err := grp.store.View(func(kv store.KV) error {
		var err error
		c, err = readCall(kv, id)
		return err
	})
	return c, err
}

// Events returns up to limit logged events in emission order.
func (grp *Group) Events(limit int) ([]*LoggedEvent, error) {
	var events []*LoggedEvent
	err := grp.store.View(func(kv store.KV) error {
		var err error
		events, err = ListEvents(kv, limit)
		return err
	})
	return events, err
}

// BalanceOf reads the book balance for account.
func (grp *Group) BalanceOf(account string) (*big.Int, error) {
	amount := new(big.Int)
	err := grp.store.View(func(kv store.KV) error {
		var err error
		amount, err = ReadBalance(kv, account)
		return err
	})
	return amount, err
}

func (grp *Group) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := grp.Drain(ctx)
		if err != nil {
			logger.Printf("Group.Drain() => %v\n", err)
		} else if n > 0 {
			logger.Verbosef("Group.Drain() => %d calls\n", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(grp.interval):
		}
	}
}

// Drain executes pending calls until none remain, returning how many
// ran. Each call commits or reverts on its own; a callback chained on
// a call is enqueued in the same transaction that marks the call
// done, which is what makes the delivery exactly once.
func (grp *Group) Drain(ctx context.Context) (int, error) {
	var count int
	for {
		ran, err := grp.step(ctx)
		if err != nil {
			return count, err
		}
		if !ran {
			return count, nil
		}
		count++
	}
}

func (grp *Group) step(ctx context.Context) (bool, error) {
	var call *Call
	err := grp.store.View(func(kv store.KV) error {
		calls, err := listCalls(kv, CallStatePending, 1)
		if err != nil || len(calls) == 0 {
			return err
		}
		call = calls[0]
		return nil
	})
	if err != nil || call == nil {
		return false, err
	}

	now := grp.clock.Now()
	var reply []byte
	invokeErr := grp.store.Update(func(kv store.KV) error {
		err := creditBalance(kv, call.Target, call.DepositAmount())
		if err != nil {
			return err
		}
		env := &Env{
			KV:          kv,
			ContractID:  call.Target,
			Predecessor: call.Predecessor,
			Signer:      call.Signer,
			Deposit:     call.DepositAmount(),
			Result:      call.Result,
			group:       grp,
			now:         now,
		}
		h := grp.handlers[call.Target]
		if h == nil {
			return fmt.Errorf("unknown contract %s", call.Target)
		}
		reply, err = h.Invoke(ctx, env, call.Method, call.Args)
		if err != nil {
			return err
		}
		for _, sub := range env.scheduled {
			err = debitBalance(kv, call.Target, sub.DepositAmount())
			if err != nil {
				return err
			}
			err = writeCall(kv, sub)
			if err != nil {
				return err
			}
		}
		return grp.finishCall(kv, call, &Result{Success: true, Value: reply}, now)
	})
	if invokeErr == nil {
		return true, nil
	}

	logger.Verbosef("call %s %s.%s failed: %v\n", call.Id, call.Target, call.Method, invokeErr)
	err = grp.store.Update(func(kv store.KV) error {
		// the attached deposit never reached the target, hand it
		// back to whoever attached it
		err := creditBalance(kv, call.Predecessor, call.DepositAmount())
		if err != nil {
			return err
		}
		return grp.finishCall(kv, call, &Result{Success: false, Value: []byte(invokeErr.Error())}, now)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (grp *Group) finishCall(kv store.KV, call *Call, result *Result, now time.Time) error {
	call.State = CallStateDone
	call.Result = result
	err := writeCall(kv, call)
	if err != nil {
		return err
	}
	if call.Callback == nil {
		return nil
	}
	cb := call.Callback
	cb.Result = result
	cb.CreatedAt = now.Add(time.Duration(1))
	return writeCall(kv, cb)
}
