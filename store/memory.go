package store

import (
	"bytes"
	"sort"
	"sync"
)

// MemoryStore keeps everything in a sorted in-process map. It backs
// the tests, which need deterministic iteration and cheap rollback.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func OpenMemory() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

func (ms *MemoryStore) Close() error {
	return nil
}

func (ms *MemoryStore) View(fn func(KV) error) error {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return fn(&memoryKV{data: ms.data, readonly: true})
}

func (ms *MemoryStore) Update(fn func(KV) error) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	staged := make(map[string][]byte, len(ms.data))
	for k, v := range ms.data {
		staged[k] = v
	}
	err := fn(&memoryKV{data: staged})
	if err != nil {
		return err
	}
	ms.data = staged
	return nil
}

type memoryKV struct {
	data     map[string][]byte
	readonly bool
}

var errReadOnly = &ReadOnlyError{}

type ReadOnlyError struct{}

func (e *ReadOnlyError) Error() string {
	return "store: mutation inside a read only transaction"
}

func (kv *memoryKV) Get(key []byte) ([]byte, error) {
	val, found := kv.data[string(key)]
	if !found {
		return nil, nil
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (kv *memoryKV) Set(key, val []byte) error {
	if kv.readonly {
		return errReadOnly
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	kv.data[string(key)] = cp
	return nil
}

func (kv *memoryKV) Delete(key []byte) error {
	if kv.readonly {
		return errReadOnly
	}
	delete(kv.data, string(key))
	return nil
}

func (kv *memoryKV) Scan(prefix []byte, fn func(key, val []byte) error) error {
	keys := make([]string, 0, len(kv.data))
	for k := range kv.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		err := fn([]byte(k), kv.data[k])
		if err != nil {
			return err
		}
	}
	return nil
}
