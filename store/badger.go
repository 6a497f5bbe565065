package store

import (
	"context"
	"time"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/dgraph-io/badger/v3"
)

type BadgerStore struct {
	db *badger.DB
}

func OpenBadger(ctx context.Context, path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			lsm, vlog := db.Size()
			logger.Printf("Badger LSM %d VLOG %d\n", lsm, vlog)
			if lsm > 1024*1024*8 || vlog > 1024*1024*32 {
				err := db.RunValueLogGC(0.5)
				logger.Printf("Badger RunValueLogGC %v\n", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Minute):
			}
		}
	}()

	return &BadgerStore{
		db: db,
	}, nil
}

func (bs *BadgerStore) Close() error {
	return bs.db.Close()
}

func (bs *BadgerStore) Badger() *badger.DB {
	return bs.db
}

func (bs *BadgerStore) View(fn func(KV) error) error {
	return bs.db.View(func(txn *badger.Txn) error {
		return fn(&badgerKV{txn})
	})
}

func (bs *BadgerStore) Update(fn func(KV) error) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return fn(&badgerKV{txn})
	})
}

type badgerKV struct {
	txn *badger.Txn
}

func (kv *badgerKV) Get(key []byte) ([]byte, error) {
	item, err := kv.txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (kv *badgerKV) Set(key, val []byte) error {
	return kv.txn.Set(key, val)
}

func (kv *badgerKV) Delete(key []byte) error {
	err := kv.txn.Delete(key)
	if err == badger.ErrKeyNotFound {
		return nil
	}
	return err
}

func (kv *badgerKV) Scan(prefix []byte, fn func(key, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := kv.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.Valid(); it.Next() {
		item := it.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		err = fn(item.KeyCopy(nil), val)
		if err != nil {
			return err
		}
	}
	return nil
}
