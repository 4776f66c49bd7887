package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/dsp-console/repository"
	"github.com/fastygo/dsp-console/repository/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.KeyValueStore {
		return NewStore()
	})
}

func TestLen(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put(context.Background(), map[string][]byte{"a": nil, "b": []byte("x")}))
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Delete(context.Background(), "a"))
	assert.Equal(t, 1, s.Len())
}
