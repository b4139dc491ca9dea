package dictionary

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolder(t *testing.T) {
	var nilHolder *Holder
	assert.True(t, nilHolder.Load().Empty())

	var zero Holder
	assert.True(t, zero.Load().Empty())

	h := NewHolder(New("rei"))
	assert.True(t, h.Load().Contains("rei"))

	h.Store(New("roma", "rato"))
	assert.Equal(t, 2, h.Load().Len())
	assert.False(t, h.Load().Contains("rei"))
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dicionario.txt")
	require.NoError(t, os.WriteFile(path, []byte("rato\n"), 0o644))

	initial, err := LoadFile(path)
	require.NoError(t, err)
	h := NewHolder(initial)

	var (
		mu      sync.Mutex
		reloads int
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, h, func(_ WordSet, err error) {
			if err == nil {
				mu.Lock()
				reloads++
				mu.Unlock()
			}
		})
	}()

	// Writes to other files in the directory are ignored.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644)
		_ = os.WriteFile(path, []byte("rato\nroeu\nroupa\n"), 0o644)
		return h.Load().Len() == 3
	}, 5*time.Second, 200*time.Millisecond)

	assert.True(t, h.Load().Contains("roupa"))
	mu.Lock()
	assert.GreaterOrEqual(t, reloads, 1)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "words.txt"), NewHolder(WordSet{}), nil)
	assert.Error(t, err)
}
