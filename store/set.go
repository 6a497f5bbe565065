package store

import (
	"github.com/MixinNetwork/mixin/common"
)

// SetIndex maps a string key to a set of string members, persisted as
// a msgpack encoded slice under prefix+key. The slice keeps insertion
// order; removals splice and preserve the relative order of the rest.
// A set that becomes empty is pruned immediately, the key is deleted
// rather than left holding an empty slice.
type SetIndex struct {
	prefix string
}

func NewSetIndex(prefix string) *SetIndex {
	return &SetIndex{prefix: prefix}
}

func (si *SetIndex) key(id string) []byte {
	return []byte(si.prefix + id)
}

// Members returns the stored members for id, or an empty slice when
// the key is absent, so callers never need a nil check.
func (si *SetIndex) Members(kv KV, id string) ([]string, error) {
	val, err := kv.Get(si.key(id))
	if err != nil || val == nil {
		return nil, err
	}
	var members []string
	err = common.MsgpackUnmarshal(val, &members)
	return members, err
}

func (si *SetIndex) Count(kv KV, id string) (int, error) {
	members, err := si.Members(kv, id)
	return len(members), err
}

func (si *SetIndex) Has(kv KV, id, member string) (bool, error) {
	members, err := si.Members(kv, id)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m == member {
			return true, nil
		}
	}
	return false, nil
}

// Add inserts member into the set for id, creating the set on first
// use. Adding an existing member is a no-op.
func (si *SetIndex) Add(kv KV, id, member string) error {
	members, err := si.Members(kv, id)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m == member {
			return nil
		}
	}
	members = append(members, member)
	return kv.Set(si.key(id), common.MsgpackMarshalPanic(members))
}

// Remove deletes member from the set for id and reports whether it
// was present. The key is deleted when the last member goes.
func (si *SetIndex) Remove(kv KV, id, member string) (bool, error) {
	members, err := si.Members(kv, id)
	if err != nil {
		return false, err
	}
	for i, m := range members {
		if m != member {
			continue
		}
		members = append(members[:i], members[i+1:]...)
		if len(members) == 0 {
			return true, kv.Delete(si.key(id))
		}
		return true, kv.Set(si.key(id), common.MsgpackMarshalPanic(members))
	}
	return false, nil
}
