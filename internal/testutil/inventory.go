package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bananas/internal/inventory"
)

// NewStockedManager returns a manager holding one item per freshness value,
// added in order.
func NewStockedManager(t testing.TB, freshness ...int) *inventory.Manager {
	t.Helper()

	m := inventory.New()
	for _, f := range freshness {
		_, err := m.AddItem(f)
		require.NoError(t, err, "stocking freshness %d", f)
	}
	return m
}
