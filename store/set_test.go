package store_test

import (
	"errors"
	"testing"

	"github.com/nfmlabs/nfm/store"
	"github.com/stretchr/testify/require"
)

func TestSetIndex(t *testing.T) {
	require := require.New(t)
	db := store.OpenMemory()
	defer db.Close()

	si := store.NewSetIndex("TEST:SET:")
	err := db.Update(func(kv store.KV) error {
		members, err := si.Members(kv, "alice")
		require.NoError(err)
		require.Len(members, 0)

		require.NoError(si.Add(kv, "alice", "a"))
		require.NoError(si.Add(kv, "alice", "b"))
		require.NoError(si.Add(kv, "alice", "c"))
		require.NoError(si.Add(kv, "alice", "b"))

		members, err = si.Members(kv, "alice")
		require.NoError(err)
		require.Equal([]string{"a", "b", "c"}, members)

		count, err := si.Count(kv, "alice")
		require.NoError(err)
		require.Equal(3, count)

		has, err := si.Has(kv, "alice", "b")
		require.NoError(err)
		require.True(has)

		removed, err := si.Remove(kv, "alice", "b")
		require.NoError(err)
		require.True(removed)
		members, err = si.Members(kv, "alice")
		require.NoError(err)
		require.Equal([]string{"a", "c"}, members)

		removed, err = si.Remove(kv, "alice", "b")
		require.NoError(err)
		require.False(removed)

		// the key is pruned with the last member
		_, err = si.Remove(kv, "alice", "a")
		require.NoError(err)
		_, err = si.Remove(kv, "alice", "c")
		require.NoError(err)
		val, err := kv.Get([]byte("TEST:SET:alice"))
		require.NoError(err)
		require.Nil(val)
		return nil
	})
	require.NoError(err)
}

func TestMemoryStoreRollback(t *testing.T) {
	require := require.New(t)
	db := store.OpenMemory()
	defer db.Close()

	err := db.Update(func(kv store.KV) error {
		return kv.Set([]byte("keep"), []byte("1"))
	})
	require.NoError(err)

	boom := errors.New("boom")
	err = db.Update(func(kv store.KV) error {
		require.NoError(kv.Set([]byte("drop"), []byte("2")))
		require.NoError(kv.Delete([]byte("keep")))
		return boom
	})
	require.Equal(boom, err)

	err = db.View(func(kv store.KV) error {
		val, err := kv.Get([]byte("keep"))
		require.NoError(err)
		require.Equal([]byte("1"), val)
		val, err = kv.Get([]byte("drop"))
		require.NoError(err)
		require.Nil(val)
		return nil
	})
	require.NoError(err)
}

func TestMemoryStoreScan(t *testing.T) {
	require := require.New(t)
	db := store.OpenMemory()
	defer db.Close()

	err := db.Update(func(kv store.KV) error {
		require.NoError(kv.Set([]byte("P:b"), []byte("2")))
		require.NoError(kv.Set([]byte("P:a"), []byte("1")))
		require.NoError(kv.Set([]byte("Q:c"), []byte("3")))
		return nil
	})
	require.NoError(err)

	var keys []string
	err = db.View(func(kv store.KV) error {
		return kv.Scan([]byte("P:"), func(key, _ []byte) error {
			keys = append(keys, string(key))
			return nil
		})
	})
	require.NoError(err)
	require.Equal([]string{"P:a", "P:b"}, keys)
}
