package shotgun

import (
	"testing"

	"github.com/lox/buckshot/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloadBounds(t *testing.T) {
	t.Parallel()

	rng := randutil.New(42)
	var g Shotgun
	seenLive := make(map[int]bool)
	for range 5000 {
		g.Reload(rng)
		require.GreaterOrEqual(t, g.Live(), 1)
		require.GreaterOrEqual(t, g.Blank(), 1)
		require.LessOrEqual(t, g.Live(), MaxShells/2)
		require.LessOrEqual(t, g.Blank(), MaxShells/2)
		require.GreaterOrEqual(t, g.Remaining(), 2)
		require.Equal(t, Unknown, g.Chamber())
		require.Zero(t, g.Fired())
		seenLive[g.Live()] = true
	}
	assert.Len(t, seenLive, MaxShells/2, "every live count in range should occur")
}

func TestReloadClearsModifiers(t *testing.T) {
	t.Parallel()

	g := New(1, 1)
	_, err := g.Invert()
	require.NoError(t, err)
	require.True(t, g.InvertOdds())
	require.NoError(t, g.Consume(Live))

	g.Reload(randutil.New(3))
	assert.False(t, g.InvertOdds())
	assert.Zero(t, g.Fired())
}

func TestResolveFrequency(t *testing.T) {
	t.Parallel()

	cases := []struct{ live, blank int }{
		{1, 1},
		{1, 3},
		{4, 1},
		{3, 2},
	}
	for _, tc := range cases {
		rng := randutil.New(int64(tc.live*10 + tc.blank))
		const n = 40000
		lives := 0
		for range n {
			g := New(tc.live, tc.blank)
			s, err := g.Resolve(rng)
			require.NoError(t, err)
			if s == Live {
				lives++
			}
			// resolving never consumes
			require.Equal(t, tc.live+tc.blank, g.Remaining())
		}
		want := float64(tc.live) / float64(tc.live+tc.blank)
		assert.InDelta(t, want, float64(lives)/n, 0.015, "live=%d blank=%d", tc.live, tc.blank)
	}
}

func TestResolveIsSticky(t *testing.T) {
	t.Parallel()

	rng := randutil.New(9)
	g := New(2, 2)
	first, err := g.Resolve(rng)
	require.NoError(t, err)
	for range 50 {
		again, err := g.Resolve(rng)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, KnowledgeOf(first), g.Chamber())
}

func TestResolveEmpty(t *testing.T) {
	t.Parallel()

	g := New(0, 0)
	_, err := g.Resolve(randutil.New(1))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestResolveOnlyOneKind(t *testing.T) {
	t.Parallel()

	rng := randutil.New(5)
	for range 100 {
		g := New(0, 3)
		s, err := g.Resolve(rng)
		require.NoError(t, err)
		assert.Equal(t, Blank, s)

		g = New(2, 0)
		s, err = g.Resolve(rng)
		require.NoError(t, err)
		assert.Equal(t, Live, s)
	}
}

func TestForceResolve(t *testing.T) {
	t.Parallel()

	t.Run("rig is sticky and consumes nothing", func(t *testing.T) {
		g := New(1, 3)
		require.NoError(t, g.ForceResolve(Live))
		assert.Equal(t, KnownLive, g.Chamber())
		assert.Equal(t, 4, g.Remaining())

		s, err := g.Resolve(randutil.New(1))
		require.NoError(t, err)
		assert.Equal(t, Live, s)
	})

	t.Run("rig overrides prior knowledge", func(t *testing.T) {
		g := New(2, 2)
		require.NoError(t, g.ForceResolve(Blank))
		require.NoError(t, g.ForceResolve(Live))
		assert.Equal(t, KnownLive, g.Chamber())
	})

	t.Run("rig needs a matching shell", func(t *testing.T) {
		g := New(0, 2)
		err := g.ForceResolve(Live)
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, Unknown, g.Chamber())
	})
}

func TestConsume(t *testing.T) {
	t.Parallel()

	g := New(1, 1)
	require.NoError(t, g.ForceResolve(Live))
	require.NoError(t, g.Consume(Live))
	assert.Equal(t, 0, g.Live())
	assert.Equal(t, 1, g.Blank())
	assert.Equal(t, Unknown, g.Chamber(), "next chamber starts unknown")
	assert.Equal(t, 1, g.Fired())

	err := g.Consume(Live)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 0, g.Live(), "counts never go negative")

	require.NoError(t, g.Consume(Blank))
	assert.True(t, g.Empty())
	assert.ErrorIs(t, g.Consume(Blank), ErrInvalidState)
}

func TestEject(t *testing.T) {
	t.Parallel()

	rng := randutil.New(77)
	g := New(3, 2)
	s, err := g.Eject(rng)
	require.NoError(t, err)
	if s == Live {
		assert.Equal(t, 2, g.Live())
		assert.Equal(t, 2, g.Blank())
	} else {
		assert.Equal(t, 3, g.Live())
		assert.Equal(t, 1, g.Blank())
	}
	assert.Equal(t, Unknown, g.Chamber())

	g = New(1, 4)
	require.NoError(t, g.ForceResolve(Live))
	s, err = g.Eject(rng)
	require.NoError(t, err)
	assert.Equal(t, Live, s)
	assert.Equal(t, 0, g.Live())
}

func TestInvert(t *testing.T) {
	t.Parallel()

	t.Run("known live becomes known blank", func(t *testing.T) {
		g := New(2, 1)
		require.NoError(t, g.ForceResolve(Live))
		flipped, err := g.Invert()
		require.NoError(t, err)
		assert.True(t, flipped)
		assert.Equal(t, KnownBlank, g.Chamber())
		assert.Equal(t, 1, g.Live())
		assert.Equal(t, 2, g.Blank())
	})

	t.Run("known blank becomes known live", func(t *testing.T) {
		g := New(1, 1)
		require.NoError(t, g.ForceResolve(Blank))
		flipped, err := g.Invert()
		require.NoError(t, err)
		assert.True(t, flipped)
		assert.Equal(t, KnownLive, g.Chamber())
		assert.Equal(t, 2, g.Live())
		assert.Equal(t, 0, g.Blank())
	})

	t.Run("unknown sets invert odds", func(t *testing.T) {
		g := New(4, 1)
		flipped, err := g.Invert()
		require.NoError(t, err)
		assert.False(t, flipped)
		assert.True(t, g.InvertOdds())
		assert.Equal(t, 5, g.Remaining())
	})

	t.Run("inverted draw favours the minority", func(t *testing.T) {
		rng := randutil.New(11)
		const n = 40000
		lives := 0
		for range n {
			g := New(3, 1)
			_, err := g.Invert()
			require.NoError(t, err)
			s, err := g.Resolve(rng)
			require.NoError(t, err)
			require.False(t, g.InvertOdds(), "flag is spent by the draw")
			require.Equal(t, 4, g.Remaining())
			if s == Live {
				lives++
				require.Equal(t, 4, g.Live())
			} else {
				require.Equal(t, 2, g.Live())
			}
		}
		assert.InDelta(t, 0.25, float64(lives)/n, 0.015)
	})

	t.Run("empty gun", func(t *testing.T) {
		g := New(0, 0)
		_, err := g.Invert()
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestKnowledgeShell(t *testing.T) {
	t.Parallel()

	s, ok := KnownLive.Shell()
	assert.True(t, ok)
	assert.Equal(t, Live, s)

	s, ok = KnownBlank.Shell()
	assert.True(t, ok)
	assert.Equal(t, Blank, s)

	_, ok = Unknown.Shell()
	assert.False(t, ok)

	assert.Panics(t, func() { _, _ = Knowledge(9).Shell() })
	assert.Equal(t, "known-live", KnownLive.String())
	assert.Equal(t, Live, Blank.Opposite())
}
