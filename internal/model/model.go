package model

// MaxModelWeapons is the invariant cap on a model's weapon list.
const MaxModelWeapons = 8

// Model is a single miniature inside a Unit.
type Model struct {
	Name            string
	Q               int // quality, 2..6, lower is better
	D               int // defense, 2..6, lower is better
	Tough           int // max wounds; current = Tough at creation
	WoundsRemaining int
	Weapons         []WeaponIndex // up to MaxModelWeapons handles into the shared pool
}

// NewModel constructs a Model at full health.
func NewModel(name string, q, d, tough int, weapons []WeaponIndex) Model {
	return Model{
		Name:            name,
		Q:               q,
		D:               d,
		Tough:           tough,
		WoundsRemaining: tough,
		Weapons:         weapons,
	}
}

// IsAlive reports whether the model has any wounds remaining
// (wounds_remaining in [0, T]; dead iff 0).
func (m *Model) IsAlive() bool {
	return m.WoundsRemaining > 0
}

// ApplyWounds decrements the model's remaining wounds by n, clamping at 0.
// Returns the overflow (damage beyond what killed the model); callers that
// do not honor Tear discard it.
func (m *Model) ApplyWounds(n int) (overflow int) {
	if !m.IsAlive() {
		return n
	}
	m.WoundsRemaining -= n
	if m.WoundsRemaining < 0 {
		overflow = -m.WoundsRemaining
		m.WoundsRemaining = 0
	}
	return overflow
}
