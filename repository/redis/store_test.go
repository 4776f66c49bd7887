package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/dsp-console/repository"
	"github.com/fastygo/dsp-console/repository/storetest"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redislib.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.KeyValueStore {
		_, client := newClient(t)
		return NewStore(client, "auth-storage/", 0)
	})
}

func TestKeysArePrefixed(t *testing.T) {
	mr, client := newClient(t)
	s := NewStore(client, "console/", 0)

	require.NoError(t, s.Put(context.Background(), map[string][]byte{"auth-storage:token": []byte("tok123")}))

	got, err := mr.Get("console/auth-storage:token")
	require.NoError(t, err)
	assert.Equal(t, "tok123", got)
	assert.False(t, mr.Exists("auth-storage:token"))
}

func TestTTLExpiresSession(t *testing.T) {
	mr, client := newClient(t)
	s := NewStore(client, "", time.Hour)
	keys := repository.NewSessionKeys("")

	require.NoError(t, s.Put(context.Background(), map[string][]byte{
		keys.Token: []byte("tok123"),
		keys.User:  []byte(`{"username":"alice"}`),
	}))
	assert.Equal(t, time.Hour, mr.TTL(keys.Token))

	mr.FastForward(2 * time.Hour)

	_, err := s.Get(context.Background(), keys.Token)
	assert.Error(t, err)
	_, err = s.Get(context.Background(), keys.User)
	assert.Error(t, err)
}
