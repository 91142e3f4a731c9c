package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFDs(t *testing.T) int {
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("/proc/self/fd not available")
	}
	return len(entries)
}

func TestFlockLockContentionKeepsNoDescriptors(t *testing.T) {
	f := NewFlockLockFactory(t.TempDir())
	holder, waiter := f.Make("write.lock"), f.Make("write.lock")
	ok, err := holder.Obtain()
	require.NoError(t, err)
	require.True(t, ok)
	defer holder.Close()

	before := openFDs(t)
	for i := 0; i < 100; i++ {
		ok, err := waiter.Obtain()
		require.NoError(t, err)
		require.False(t, ok)
		require.True(t, waiter.IsLocked())
	}
	assert.InDelta(t, before, openFDs(t), 2)
}
