package game

import "github.com/lox/buckshot/internal/shotgun"

// ObservationSize is the length of Observation.Vector.
//
// Layout:
//
//	[0]      own hp / max hp
//	[1]      opponent hp / max hp
//	[2:8]    own item counts / capacity, one per item kind
//	[8:14]   opponent item counts / capacity
//	[14:17]  chamber one-hot: unknown, known-live, known-blank
//	[17]     own sawed
//	[18]     opponent sawed
//	[19]     invert odds pending
//	[20]     live shells / (MaxShells/2)
//	[21]     blank shells / (MaxShells/2)
//	[22]     round / 3
//	[23]     opponent cuffed
const ObservationSize = 2 + 2*NumItems + 3 + 3 + 2 + 1 + 1

// Observation is what a decision-maker sees for one seat.
type Observation struct {
	Seat           Seat
	HP             int
	OpponentHP     int
	MaxHP          int
	Items          Inventory
	OpponentItems  Inventory
	ItemCapacity   int
	Chamber        shotgun.Knowledge
	Sawed          bool
	OpponentSawed  bool
	InvertOdds     bool
	Live           int
	Blank          int
	Fired          int
	Round          int
	OpponentCuffed bool
	Done           bool
}

// Observe builds the AI's observation.
func (e *Engine) Observe() Observation {
	return ObservationFor(e.state, AI)
}

// ObservationFor builds seat's observation of s. Both bags are visible on the
// table, so the opponent's counts are exact.
func ObservationFor(s State, seat Seat) Observation {
	me, opp := s.Player(seat), s.Player(seat.Opponent())
	return Observation{
		Seat:           seat,
		HP:             me.HP,
		OpponentHP:     opp.HP,
		MaxHP:          s.MaxHP,
		Items:          me.Items,
		OpponentItems:  opp.Items,
		ItemCapacity:   s.ItemCapacity,
		Chamber:        s.Shotgun.Chamber(),
		Sawed:          me.Sawed,
		OpponentSawed:  opp.Sawed,
		InvertOdds:     s.Shotgun.InvertOdds(),
		Live:           s.Shotgun.Live(),
		Blank:          s.Shotgun.Blank(),
		Fired:          s.Shotgun.Fired(),
		Round:          s.Round,
		OpponentCuffed: !opp.CanPlay,
		Done:           s.Over,
	}
}

// Legal reports whether a is allowed for the observing seat. Shots are
// always legal; item actions need the item in the bag.
func (o Observation) Legal(a Action) bool {
	if !a.Valid() {
		return false
	}
	if it, ok := a.Item(); ok {
		return o.Items.Has(it)
	}
	return true
}

// LegalActions lists the allowed actions in index order.
func (o Observation) LegalActions() []Action {
	actions := make([]Action, 0, NumActions)
	for i := range NumActions {
		if o.Legal(Action(i)) {
			actions = append(actions, Action(i))
		}
	}
	return actions
}

// Mask returns the legal-action mask indexed by Action.
func (o Observation) Mask() [NumActions]bool {
	var m [NumActions]bool
	for i := range NumActions {
		m[i] = o.Legal(Action(i))
	}
	return m
}

// Vector encodes the observation into a fixed-shape feature vector.
func (o Observation) Vector() []float32 {
	out := make([]float32, ObservationSize)
	o.Encode((*[ObservationSize]float32)(out))
	return out
}

// Encode writes the feature vector into out, overwriting it.
func (o Observation) Encode(out *[ObservationSize]float32) {
	*out = [ObservationSize]float32{}

	maxHP := float32(max(o.MaxHP, 1))
	capacity := float32(max(o.ItemCapacity, 1))
	half := float32(shotgun.MaxShells / 2)

	out[0] = float32(o.HP) / maxHP
	out[1] = float32(o.OpponentHP) / maxHP
	offset := 2
	for i := range NumItems {
		out[offset+i] = float32(o.Items[i]) / capacity
		out[offset+NumItems+i] = float32(o.OpponentItems[i]) / capacity
	}
	offset += 2 * NumItems

	switch o.Chamber {
	case shotgun.Unknown:
		out[offset] = 1
	case shotgun.KnownLive:
		out[offset+1] = 1
	case shotgun.KnownBlank:
		out[offset+2] = 1
	}
	offset += 3

	out[offset] = boolFeature(o.Sawed)
	out[offset+1] = boolFeature(o.OpponentSawed)
	out[offset+2] = boolFeature(o.InvertOdds)
	out[offset+3] = float32(o.Live) / half
	out[offset+4] = float32(o.Blank) / half
	out[offset+5] = float32(o.Round) / 3
	out[offset+6] = boolFeature(o.OpponentCuffed)
}

func boolFeature(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
