package model

// MaxUnitModels and MaxUnitRules are the invariant caps on a unit's size.
const (
	MaxUnitModels = 32
	MaxUnitRules  = 16
)

// AIType classifies a unit's combat posture. It is cached on the
// Unit after classification so the AI controller does not re-derive it
// every round.
type AIType int

const (
	AIUnknown AIType = iota
	AIMelee
	AIShooting
	AIHybrid
)

func (t AIType) String() string {
	switch t {
	case AIMelee:
		return "Melee"
	case AIShooting:
		return "Shooting"
	case AIHybrid:
		return "Hybrid"
	default:
		return "Unknown"
	}
}

// Unit is an ordered collection of models plus unit-level fields. Index
// is the unit's position in its catalog vector — the pair-index space the
// batch simulator iterates is built from these indices, so Index must be
// set to match catalog order.
type Unit struct {
	Index   int
	Name    string
	Faction string
	Points  int
	Models  []Model
	Rules   []Rule // unit-level rules, max MaxUnitRules

	// MoveInches is the unit's movement characteristic, in inches per
	// round, required by the AI controller and game runner.
	MoveInches int

	// The attack totals are filled in once by cacheAggregates; aiType is
	// set through SetAIType. The AI controller reads both thereafter.
	aiType              AIType
	totalMeleeAttacks   int
	totalRangedAttacks  int
	aggregatesComputed  bool
}

// NewUnit constructs a Unit. pool is consulted once to cache aggregate
// attack counts.
func NewUnit(index int, name, faction string, points int, models []Model, rules []Rule, pool *WeaponPool) *Unit {
	u := &Unit{Index: index, Name: name, Faction: faction, Points: points, Models: models, Rules: rules, MoveInches: 6}
	u.cacheAggregates(pool)
	return u
}

// cacheAggregates computes the total melee/ranged attack counts across all
// models at full strength, used by the AI classifier.
func (u *Unit) cacheAggregates(pool *WeaponPool) {
	u.totalMeleeAttacks = 0
	u.totalRangedAttacks = 0
	for i := range u.Models {
		for _, idx := range u.Models[i].Weapons {
			w := pool.Get(idx)
			if w.IsMelee() {
				u.totalMeleeAttacks += w.A
			} else {
				u.totalRangedAttacks += w.A
			}
		}
	}
	u.aggregatesComputed = true
}

// TotalMeleeAttacks and TotalRangedAttacks return the cached full-strength
// attack totals.
func (u *Unit) TotalMeleeAttacks() int  { return u.totalMeleeAttacks }
func (u *Unit) TotalRangedAttacks() int { return u.totalRangedAttacks }

// SetAIType caches the classifier's verdict.
func (u *Unit) SetAIType(t AIType) { u.aiType = t }

// AIType returns the cached classification, or AIUnknown if never set.
func (u *Unit) AIType() AIType { return u.aiType }

// AliveModels counts models with WoundsRemaining > 0.
func (u *Unit) AliveModels() int {
	n := 0
	for i := range u.Models {
		if u.Models[i].IsAlive() {
			n++
		}
	}
	return n
}

// StartingModels returns the unit's original model count.
func (u *Unit) StartingModels() int {
	return len(u.Models)
}

// IsAlive reports whether at least one model has wounds remaining.
func (u *Unit) IsAlive() bool {
	return u.AliveModels() > 0
}

// StrengthRatio returns AliveModels/StartingModels, used by objective
// policy and the winner rule's secondary tiebreak.
func (u *Unit) StrengthRatio() float64 {
	if len(u.Models) == 0 {
		return 0
	}
	return float64(u.AliveModels()) / float64(len(u.Models))
}

// HasRule reports whether the unit carries a unit-level rule tag.
func (u *Unit) HasRule(tag RuleTag) (Rule, bool) {
	return HasRule(u.Rules, tag)
}

// LeastWoundedLivingModel returns a pointer to the living model with the
// fewest wounds remaining, breaking ties by lowest model index. Returns
// nil if no model is alive.
func (u *Unit) LeastWoundedLivingModel() *Model {
	best := -1
	for i := range u.Models {
		if !u.Models[i].IsAlive() {
			continue
		}
		if best == -1 || u.Models[i].WoundsRemaining < u.Models[best].WoundsRemaining {
			best = i
		}
	}
	if best == -1 {
		return nil
	}
	return &u.Models[best]
}

// MeleeWeapons returns the distinct weapon handles a living model can
// attack with in melee this resolution.
func (u *Unit) MeleeWeapons(pool *WeaponPool) []WeaponIndex {
	return u.weaponsByFilter(pool, func(w *Weapon) bool { return w.IsMelee() && w.A > 0 })
}

// RangedWeapons returns the weapon handles a living model can shoot with
// this resolution.
func (u *Unit) RangedWeapons(pool *WeaponPool) []WeaponIndex {
	return u.weaponsByFilter(pool, func(w *Weapon) bool { return w.IsRanged() && w.A > 0 })
}

func (u *Unit) weaponsByFilter(pool *WeaponPool, keep func(*Weapon) bool) []WeaponIndex {
	var out []WeaponIndex
	seen := make(map[WeaponIndex]bool)
	for i := range u.Models {
		if !u.Models[i].IsAlive() {
			continue
		}
		for _, idx := range u.Models[i].Weapons {
			if seen[idx] {
				continue
			}
			if keep(pool.Get(idx)) {
				out = append(out, idx)
				seen[idx] = true
			}
		}
	}
	return out
}

// ModelsWithWeapon counts how many living models carry the given weapon
// handle — the per-model attack multiplier for squad weapons.
func (u *Unit) ModelsWithWeapon(idx WeaponIndex) int {
	n := 0
	for i := range u.Models {
		if !u.Models[i].IsAlive() {
			continue
		}
		for _, w := range u.Models[i].Weapons {
			if w == idx {
				n++
				break
			}
		}
	}
	return n
}
