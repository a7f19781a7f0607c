// Package combat implements the combat resolver: resolving one
// attack profile (or a full phase of them) from an attacker unit against a
// defender unit.
package combat

// Phase identifies which half of the attack sequence is being resolved —
// only ranged weapons fire in Shooting, only melee weapons swing in Melee.
type Phase int

const (
	Shooting Phase = iota
	Melee
)

// Context carries the situational modifiers an attack resolves under:
// phase, charge status, and field modifiers (cover, elevation). Cover
// makes the attacker's hit roll harder; Elevation makes it easier. Both
// are folded into a single additive hit-roll modifier.
type Context struct {
	Phase     Phase
	Charging  bool
	Cover     int
	Elevation int
}

// HitModifier collapses the field modifiers into one additive term applied
// to the attacker's quality test: cover subtracts, elevation adds.
func (c Context) HitModifier() int {
	return c.Elevation - c.Cover
}
