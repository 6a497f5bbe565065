package store

// KV is one storage transaction. Get returns (nil, nil) for a missing
// key. Scan visits every key under prefix in ascending key order.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, val []byte) error
	Delete(key []byte) error
	Scan(prefix []byte, fn func(key, val []byte) error) error
}

// Store hands out transactions. An error returned from the Update
// function discards every mutation it staged; a nil return commits
// them atomically.
type Store interface {
	View(fn func(KV) error) error
	Update(fn func(KV) error) error
	Close() error
}
