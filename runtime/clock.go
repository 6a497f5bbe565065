package runtime

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/nfmlabs/nfm/store"
)

const clockPropertyKey = "GROUP:CLOCK:MONOTONIC"

// Clock hands out strictly increasing timestamps and persists the
// last value, so timed index keys stay ordered across restarts even
// if the wall clock steps backwards.
type Clock struct {
	sync.Mutex
	store store.Store
	now   time.Time
}

func NewClock(db store.Store) (*Clock, error) {
	var ts time.Time
	err := db.View(func(kv store.KV) error {
		val, err := kv.Get([]byte(clockPropertyKey))
		if err != nil || len(val) != 8 {
			return err
		}
		ts = time.Unix(0, int64(binary.BigEndian.Uint64(val)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if now := time.Now(); ts.Before(now) {
		ts = now
	}
	clock := new(Clock)
	clock.store = db
	clock.now = ts
	return clock, nil
}

func (c *Clock) Now() time.Time {
	c.Lock()
	defer c.Unlock()

	for {
		now := time.Now()
		if now.After(c.now) {
			c.now = now
			break
		}
		c.now = c.now.Add(time.Microsecond)
		break
	}

	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, uint64(c.now.UnixNano()))
	for {
		err := c.store.Update(func(kv store.KV) error {
			return kv.Set([]byte(clockPropertyKey), val)
		})
		if err == nil {
			break
		}
		logger.Printf("Clock.Now() => %v\n", err)
		time.Sleep(100 * time.Millisecond)
	}
	return c.now
}
