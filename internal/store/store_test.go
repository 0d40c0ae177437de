package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/locallibrary/catalog/internal/store"
	"github.com/locallibrary/catalog/internal/store/storetest"
)

func setupTestStore(t *testing.T) *store.Badger {
	t.Helper()

	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestBadgerStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return setupTestStore(t)
	})
}
