//go:build !integration

package cli

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopTargets(t *testing.T) {
	ctx := context.Background()

	shops, err := shopTargets(ctx, nil, 42, false, "")
	require.NoError(t, err)
	assert.Equal(t, []uint64{42}, shops)

	_, err = shopTargets(ctx, nil, 0, false, "")
	assert.Error(t, err)

	_, err = shopTargets(ctx, nil, 42, true, "")
	assert.Error(t, err)
}

func TestForEachShop_RunsAllAndCountsFailures(t *testing.T) {
	var (
		mu       sync.Mutex
		seen     []uint64
		inFlight atomic.Int32
		peak     atomic.Int32
	)

	err := forEachShop(context.Background(), []uint64{1, 2, 3, 4, 5, 6}, 2, func(_ context.Context, id uint64) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}

		mu.Lock()
		seen = append(seen, id)
		mu.Unlock()

		if id%3 == 0 {
			return errors.New("boom")
		}
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, "2 of 6 shops failed", err.Error())
	assert.ElementsMatch(t, []uint64{1, 2, 3, 4, 5, 6}, seen)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestForEachShop_NoShops(t *testing.T) {
	called := false
	err := forEachShop(context.Background(), nil, 4, func(context.Context, uint64) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, called)
}
