// Package storetest checks a repository.KeyValueStore against the contract
// the session store relies on.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/dsp-console/domain"
	"github.com/fastygo/dsp-console/repository"
)

// Run exercises a fresh store returned by open for every case.
func Run(t *testing.T, open func(t *testing.T) repository.KeyValueStore) {
	t.Helper()
	keys := repository.NewSessionKeys("")

	t.Run("missing key", func(t *testing.T) {
		kv := open(t)
		_, err := kv.Get(context.Background(), keys.Token)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		kv := open(t)
		ctx := context.Background()
		require.NoError(t, kv.Put(ctx, map[string][]byte{
			keys.Token: []byte("tok123"),
			keys.User:  []byte(`{"username":"alice"}`),
		}))

		token, err := kv.Get(ctx, keys.Token)
		require.NoError(t, err)
		assert.Equal(t, "tok123", string(token))

		user, err := kv.Get(ctx, keys.User)
		require.NoError(t, err)
		assert.JSONEq(t, `{"username":"alice"}`, string(user))
	})

	t.Run("put overwrites", func(t *testing.T) {
		kv := open(t)
		ctx := context.Background()
		require.NoError(t, kv.Put(ctx, map[string][]byte{keys.Token: []byte("old")}))
		require.NoError(t, kv.Put(ctx, map[string][]byte{keys.Token: []byte("new")}))

		token, err := kv.Get(ctx, keys.Token)
		require.NoError(t, err)
		assert.Equal(t, "new", string(token))
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		kv := open(t)
		ctx := context.Background()
		value := []byte("tok123")
		require.NoError(t, kv.Put(ctx, map[string][]byte{keys.Token: value}))
		value[0] = 'X'

		got, err := kv.Get(ctx, keys.Token)
		require.NoError(t, err)
		got[1] = 'X'

		again, err := kv.Get(ctx, keys.Token)
		require.NoError(t, err)
		assert.Equal(t, "tok123", string(again))
	})

	t.Run("delete", func(t *testing.T) {
		kv := open(t)
		ctx := context.Background()
		require.NoError(t, kv.Put(ctx, map[string][]byte{
			keys.Token: []byte("tok123"),
			keys.User:  []byte(`{}`),
		}))

		require.NoError(t, kv.Delete(ctx, keys.All()...))
		for _, k := range keys.All() {
			_, err := kv.Get(ctx, k)
			assert.ErrorIs(t, err, domain.ErrKeyNotFound)
		}

		// Deleting absent keys is not an error.
		require.NoError(t, kv.Delete(ctx, keys.All()...))
		require.NoError(t, kv.Delete(ctx))
	})

	t.Run("namespaces are disjoint", func(t *testing.T) {
		kv := open(t)
		ctx := context.Background()
		other := repository.NewSessionKeys("other")
		require.NoError(t, kv.Put(ctx, map[string][]byte{keys.Token: []byte("a"), other.Token: []byte("b")}))
		require.NoError(t, kv.Delete(ctx, keys.All()...))

		got, err := kv.Get(ctx, other.Token)
		require.NoError(t, err)
		assert.Equal(t, "b", string(got))
	})
}
