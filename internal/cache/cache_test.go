package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(n *int, value string) Loader[string] {
	return func(context.Context) (string, error) {
		*n++
		return value, nil
	}
}

func TestPages_CachesPerVariant(t *testing.T) {
	p := NewPages[string](5 * time.Minute)
	ctx := context.Background()
	calls := 0

	v, err := p.Load(ctx, "/dashboard/invoices", "page=1", counter(&calls, "first"))
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	// cached: loader not called again
	v, _ = p.Load(ctx, "/dashboard/invoices", "page=1", counter(&calls, "second"))
	assert.Equal(t, "first", v)
	assert.Equal(t, 1, calls)

	_, _ = p.Load(ctx, "/dashboard/invoices", "page=2", counter(&calls, "other"))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, p.Len("/dashboard/invoices"))
}

func TestPages_InvalidateDropsAllVariantsOfPath(t *testing.T) {
	p := NewPages[string](5 * time.Minute)
	ctx := context.Background()
	calls := 0
	_, _ = p.Load(ctx, "/dashboard/invoices", "page=1", counter(&calls, "a"))
	_, _ = p.Load(ctx, "/dashboard/invoices", "page=2", counter(&calls, "b"))
	_, _ = p.Load(ctx, "/dashboard/customers", "", counter(&calls, "c"))

	p.Invalidate("/dashboard/invoices")
	assert.Zero(t, p.Len("/dashboard/invoices"))
	assert.Equal(t, 1, p.Len("/dashboard/customers"))

	v, _ := p.Load(ctx, "/dashboard/invoices", "page=1", counter(&calls, "fresh"))
	assert.Equal(t, "fresh", v)
}

func TestPages_TTLExpiry(t *testing.T) {
	p := NewPages[string](time.Minute)
	now := time.Now()
	p.now = func() time.Time { return now }
	ctx := context.Background()
	calls := 0

	_, _ = p.Load(ctx, "/x", "", counter(&calls, "old"))
	now = now.Add(2 * time.Minute)
	v, _ := p.Load(ctx, "/x", "", counter(&calls, "new"))
	assert.Equal(t, "new", v)
	assert.Equal(t, 2, calls)
}

func TestPages_ErrorsAreNotCached(t *testing.T) {
	p := NewPages[string](time.Minute)
	boom := errors.New("boom")
	_, err := p.Load(context.Background(), "/x", "", func(context.Context) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, p.Len("/x"))
}

func TestPages_InvalidateAll(t *testing.T) {
	p := NewPages[int](time.Minute)
	_, _ = p.Load(context.Background(), "/a", "", func(context.Context) (int, error) { return 1, nil })
	_, _ = p.Load(context.Background(), "/b", "", func(context.Context) (int, error) { return 2, nil })
	p.InvalidateAll()
	assert.Zero(t, p.Len("/a"))
	assert.Zero(t, p.Len("/b"))
}

func TestRevalidator_FansOutAndCountsGenerations(t *testing.T) {
	invoices := NewPages[string](time.Minute)
	customers := NewPages[int](time.Minute)
	r := NewRevalidator(invoices)
	r.Register(customers)

	_, _ = invoices.Load(context.Background(), "/dashboard/customers", "", func(context.Context) (string, error) { return "x", nil })
	_, _ = customers.Load(context.Background(), "/dashboard/customers", "", func(context.Context) (int, error) { return 1, nil })

	r.Revalidate("/dashboard/customers")
	r.Revalidate("/dashboard/customers")

	assert.Zero(t, invoices.Len("/dashboard/customers"))
	assert.Zero(t, customers.Len("/dashboard/customers"))
	assert.Equal(t, uint64(2), r.Generation("/dashboard/customers"))
	assert.Zero(t, r.Generation("/dashboard/invoices"))
}

func TestPages_InvalidatedDuringLoadIsNotCached(t *testing.T) {
	p := NewPages[string](time.Hour)
	r := NewRevalidator(p)
	ctx := context.Background()

	v, err := p.Load(ctx, "/dashboard/invoices", "", func(context.Context) (string, error) {
		// a write lands while the listing is being read
		r.Revalidate("/dashboard/invoices")
		return "old", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "old", v)
	assert.Zero(t, p.Len("/dashboard/invoices"))

	calls := 0
	v, _ = p.Load(ctx, "/dashboard/invoices", "", counter(&calls, "fresh"))
	assert.Equal(t, "fresh", v)
	assert.Equal(t, 1, calls)
}

func TestPages_InvalidateAllDuringLoadIsNotCached(t *testing.T) {
	p := NewPages[string](time.Hour)
	_, _ = p.Load(context.Background(), "/x", "", func(context.Context) (string, error) {
		p.InvalidateAll()
		return "old", nil
	})
	assert.Zero(t, p.Len("/x"))
}

func TestPages_OtherPathInvalidationKeepsLoad(t *testing.T) {
	p := NewPages[string](time.Hour)
	_, _ = p.Load(context.Background(), "/x", "", func(context.Context) (string, error) {
		p.Invalidate("/y")
		return "x", nil
	})
	assert.Equal(t, 1, p.Len("/x"))
}
