package runtime

import (
	"encoding/json"
	"time"

	"github.com/MixinNetwork/mixin/common"
	"github.com/MixinNetwork/mixin/logger"
	"github.com/gofrs/uuid"
	"github.com/nfmlabs/nfm/store"
)

const prefixEventLog = "EVENT:LOG:"

// Event is the envelope appended to the log sink, one JSON document
// per emission, following the nep171 event convention.
type Event struct {
	Standard string      `json:"standard"`
	Version  string      `json:"version"`
	Event    string      `json:"event"`
	Data     interface{} `json:"data"`
}

// LoggedEvent is the persisted form, the payload is the serialized
// Event JSON.
type LoggedEvent struct {
	Id        string
	Contract  string
	Payload   []byte
	CreatedAt time.Time
}

func writeEvent(kv store.KV, contract string, ev Event, now time.Time) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	le := &LoggedEvent{
		Id:        uuid.Must(uuid.NewV4()).String(),
		Contract:  contract,
		Payload:   payload,
		CreatedAt: now,
	}
	logger.Verbosef("EVENT_JSON %s %s\n", contract, string(payload))
	key := append([]byte(prefixEventLog), store.TimeToBytes(now)...)
	key = append(key, []byte(le.Id)...)
	return kv.Set(key, common.MsgpackMarshalPanic(le))
}

// ListEvents returns up to limit logged events in emission order. A
// non-positive limit returns everything.
func ListEvents(kv store.KV, limit int) ([]*LoggedEvent, error) {
	var events []*LoggedEvent
	err := kv.Scan([]byte(prefixEventLog), func(key, val []byte) error {
		var le LoggedEvent
		err := common.MsgpackUnmarshal(val, &le)
		if err != nil {
			return err
		}
		events = append(events, &le)
		if limit > 0 && len(events) == limit {
			return errScanDone
		}
		return nil
	})
	if err == errScanDone {
		err = nil
	}
	return events, err
}
