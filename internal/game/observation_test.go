package game

import (
	"testing"

	"github.com/lox/buckshot/internal/shotgun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservation(t *testing.T) {
	t.Parallel()

	t.Run("mirrors state", func(t *testing.T) {
		e := newTestEngine(1, neverCalled(t), WithFirstLoad(2, 3), WithItems(AI, Glass, Cuffs), WithItems(Dealer, Saw))
		_, err := e.Step(UseCuffs)
		require.NoError(t, err)

		obs := e.Observe()
		assert.Equal(t, AI, obs.Seat)
		assert.Equal(t, DefaultMaxHP, obs.HP)
		assert.Equal(t, DefaultMaxHP, obs.OpponentHP)
		assert.Equal(t, InventoryOf(Glass), obs.Items)
		assert.Equal(t, InventoryOf(Saw), obs.OpponentItems)
		assert.Equal(t, 2, obs.Live)
		assert.Equal(t, 3, obs.Blank)
		assert.Zero(t, obs.Fired)
		assert.Equal(t, 1, obs.Round)
		assert.Equal(t, shotgun.Unknown, obs.Chamber)
		assert.True(t, obs.OpponentCuffed)
		assert.False(t, obs.Done)

		dealer := ObservationFor(e.State(), Dealer)
		assert.Equal(t, InventoryOf(Saw), dealer.Items)
		assert.Equal(t, InventoryOf(Glass), dealer.OpponentItems)
		assert.False(t, dealer.OpponentCuffed)
	})

	t.Run("fired counts spent shells", func(t *testing.T) {
		e := newTestEngine(1, neverCalled(t), WithFirstLoad(2, 3), WithItems(AI, Beer))
		_, err := e.Step(UseBeer)
		require.NoError(t, err)

		obs := e.Observe()
		assert.Equal(t, 1, obs.Fired)
		assert.Equal(t, 4, obs.Live+obs.Blank)
	})

	t.Run("legal actions", func(t *testing.T) {
		e := newTestEngine(1, neverCalled(t), WithItems(AI, Glass, Saw))
		obs := e.Observe()
		assert.Equal(t, []Action{UseGlass, UseSaw, ShootSelf, ShootOpponent}, obs.LegalActions())

		mask := obs.Mask()
		for i := range NumActions {
			assert.Equal(t, obs.Legal(Action(i)), mask[i])
		}
		assert.False(t, obs.Legal(Action(NumActions)))
	})

	t.Run("shots are always legal", func(t *testing.T) {
		obs := newTestEngine(1, neverCalled(t)).Observe()
		assert.Equal(t, []Action{ShootSelf, ShootOpponent}, obs.LegalActions())
	})

	t.Run("vector layout", func(t *testing.T) {
		e := newTestEngine(1, neverCalled(t), WithFirstLoad(2, 2), WithItems(AI, Glass, Glass, Saw))
		_, err := e.Step(UseGlass)
		require.NoError(t, err)
		_, err = e.Step(UseSaw)
		require.NoError(t, err)

		obs := e.Observe()
		vec := obs.Vector()
		require.Len(t, vec, ObservationSize)
		assert.Equal(t, float32(1), vec[0])
		assert.Equal(t, float32(1), vec[1])
		assert.Equal(t, float32(1)/8, vec[2+int(Glass)])
		assert.Zero(t, vec[2+int(Saw)])

		chamber := vec[14:17]
		var hot int
		for _, v := range chamber {
			if v == 1 {
				hot++
			}
		}
		assert.Equal(t, 1, hot, "chamber is one-hot")
		assert.Zero(t, chamber[0], "glass made the chamber known")

		assert.Equal(t, float32(1), vec[17], "own saw")
		assert.Zero(t, vec[18])
		assert.Zero(t, vec[19])
		assert.Equal(t, float32(1)/3, vec[22])

		for i, v := range vec {
			assert.GreaterOrEqual(t, v, float32(0), "feature %d", i)
			assert.LessOrEqual(t, v, float32(1), "feature %d", i)
		}
	})

	t.Run("encode overwrites", func(t *testing.T) {
		var out [ObservationSize]float32
		for i := range out {
			out[i] = 9
		}
		obs := newTestEngine(1, neverCalled(t)).Observe()
		obs.Encode(&out)
		assert.Equal(t, obs.Vector(), out[:])
	})
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	for i := range NumActions {
		a := Action(i)
		got, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	tests := []struct {
		in   string
		want Action
	}{
		{"self", ShootSelf},
		{"dealer", ShootOpponent},
		{"opponent", ShootOpponent},
		{"beer", UseBeer},
		{"use_saw", UseSaw},
		{" Shoot-Opponent ", ShootOpponent},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAction(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseAction("reload")
	assert.ErrorIs(t, err, ErrUnknownAction)

	it, ok := UseCuffs.Item()
	assert.True(t, ok)
	assert.Equal(t, Cuffs, it)
	_, ok = ShootSelf.Item()
	assert.False(t, ok)
	assert.True(t, ShootSelf.IsShot())
	assert.False(t, UseBeer.IsShot())
}
