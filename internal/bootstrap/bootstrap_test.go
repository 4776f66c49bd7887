package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeRestorer struct {
	calls         int
	authenticated bool
}

func (f *fakeRestorer) Restore(context.Context) {
	f.calls++
	f.authenticated = true
}

func (f *fakeRestorer) IsAuthenticated() bool { return f.authenticated }

func TestRunRestoresOnce(t *testing.T) {
	r := &fakeRestorer{}
	b := New(r, nil)

	assert.True(t, b.Run(context.Background()))
	assert.True(t, b.Run(context.Background()))
	assert.Equal(t, 1, r.calls)
}
