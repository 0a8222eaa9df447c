package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/sahakari/internal/auth"
	"example.com/sahakari/internal/domain"
)

func TestRegistryReusesControllerPerSession(t *testing.T) {
	reg := NewRegistry(returning(nil), quiet)
	clerk := auth.Session{Subject: "clerk", Role: auth.RoleBranch, Branch: "Pokhara"}

	c1 := reg.For(clerk)
	require.Same(t, c1, reg.For(clerk))

	moved := clerk
	moved.Branch = "Butwal"
	c2 := reg.For(moved)
	require.NotSame(t, c1, c2)
	require.Equal(t, 1, reg.Len())
}

func TestReloadMatchingTargetsCoveringFilters(t *testing.T) {
	fetcher := returning(sampleRecords())
	reg := NewRegistry(fetcher, quiet)
	ctx := context.Background()

	pokhara := reg.For(auth.Session{Subject: "clerk", Role: auth.RoleBranch, Branch: "Pokhara"})
	butwal := reg.For(auth.Session{Subject: "other", Role: auth.RoleBranch, Branch: "Butwal"})
	everyone := reg.For(admin)
	reg.For(auth.Session{Subject: "idle", Role: auth.RoleAdmin})

	for _, c := range []*Controller{pokhara, butwal, everyone} {
		_, err := c.Apply(ctx, domain.ReportFilter{Year: 2024})
		require.NoError(t, err)
	}
	before := len(fetcher.Calls())

	n, err := reg.ReloadMatching(ctx, day(2024, time.March, 3), "Pokhara")
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Len(t, fetcher.Calls(), before+2)

	n, err = reg.ReloadMatching(ctx, day(2022, time.March, 3), "Pokhara")
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = reg.ReloadMatching(ctx, nil, "")
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestRegistryEvictsIdleControllers(t *testing.T) {
	reg := NewRegistry(returning(sampleRecords()), quiet)
	reg.SetIdleTTL(time.Hour)
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	stale := reg.For(auth.Session{Subject: "gone", Role: auth.RoleAdmin})
	active := reg.For(admin)
	_, err := active.Apply(context.Background(), domain.ReportFilter{Year: 2024})
	require.NoError(t, err)

	now = now.Add(40 * time.Minute)
	require.Same(t, active, reg.For(admin))

	now = now.Add(30 * time.Minute)
	require.Same(t, active, reg.For(admin))
	require.Equal(t, 1, reg.Len(), "the unused session was dropped")

	n, err := reg.ReloadMatching(context.Background(), nil, "")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NotSame(t, stale, reg.For(auth.Session{Subject: "gone", Role: auth.RoleAdmin}))
}
