package model

import "fmt"

// MaxWeaponRules is the invariant cap on a weapon's rule list.
const MaxWeaponRules = 8

// WeaponIndex is a stable handle into a WeaponPool. The zero value is never
// a valid handle; NewWeaponPool starts allocation at index 1 so an
// uninitialized WeaponIndex field is detectable.
type WeaponIndex uint32

// Weapon is immutable once built. Name is a short display
// string; A/R/AP are stored as plain ints for arithmetic convenience —
// the u8 width is a storage concern the on-disk formats enforce, not a
// Go-side one.
type Weapon struct {
	Name  string
	A     int // attacks
	R     int // range in inches; 0 = melee
	AP    int // armor piercing
	Rules []Rule
}

// IsMelee reports whether this weapon has no range.
func (w Weapon) IsMelee() bool { return w.R == 0 }

// IsRanged reports the opposite of IsMelee.
func (w Weapon) IsRanged() bool { return w.R > 0 }

// HasRule reports whether the weapon carries tag, and its value.
func (w Weapon) HasRule(tag RuleTag) (Rule, bool) {
	return HasRule(w.Rules, tag)
}

// Validate enforces the weapon-level invariants, including the rule that
// Blast is disallowed on melee weapons: the combination is rejected at
// ingestion rather than silently ignored.
func (w Weapon) Validate() error {
	if len(w.Rules) > MaxWeaponRules {
		return fmt.Errorf("weapon %q: %d rules exceeds max %d", w.Name, len(w.Rules), MaxWeaponRules)
	}
	if _, ok := w.HasRule(RuleBlast); ok && w.IsMelee() {
		return fmt.Errorf("weapon %q: Blast is not valid on a melee weapon", w.Name)
	}
	return nil
}

// WeaponPool is a process-wide interning table mapping WeaponIndex to
// Weapon. It is append-only after construction completes, so concurrent
// readers are always safe: the pool is a value owned by the batch driver
// and passed down, never a package-level global.
type WeaponPool struct {
	weapons []Weapon // index 0 is a sentinel; real handles start at 1
}

// NewWeaponPool creates an empty pool.
func NewWeaponPool() *WeaponPool {
	return &WeaponPool{weapons: []Weapon{{}}}
}

// Add interns w and returns its stable handle. Intended for use only
// during catalog construction, before any worker goroutine starts; the
// pool carries no internal lock because the concurrency model guarantees
// single-writer-before-many-readers, not concurrent writers.
func (p *WeaponPool) Add(w Weapon) WeaponIndex {
	p.weapons = append(p.weapons, w)
	return WeaponIndex(len(p.weapons) - 1)
}

// Get resolves a handle back to its Weapon. Panics on an out-of-range
// handle: that is a data-model invariant violation, not a runtime
// condition callers should branch on.
func (p *WeaponPool) Get(idx WeaponIndex) *Weapon {
	return &p.weapons[idx]
}

// Len returns the number of interned weapons (excluding the sentinel).
func (p *WeaponPool) Len() int {
	return len(p.weapons) - 1
}
