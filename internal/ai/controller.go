// Package ai implements the tactical AI controller: a stateless
// classifier and per-round decision maker for one unit in a matchup.
package ai

import (
	"math"

	"github.com/jruiznavarro/battlesim/internal/model"
)

// ChargeRange is the rules system's standard charge distance in inches,
// a fixed rules constant rather than a per-unit stat.
const ChargeRange = 12.0

// Classify inspects a unit's weapons and returns its AI posture: Melee if
// melee attacks exceed ranged by 1.5x, Shooting if the reverse, Hybrid
// otherwise. The result is meant to be cached on the unit via
// model.Unit.SetAIType.
func Classify(u *model.Unit) model.AIType {
	melee := float64(u.TotalMeleeAttacks())
	ranged := float64(u.TotalRangedAttacks())

	switch {
	case melee > ranged*1.5:
		return model.AIMelee
	case ranged > melee*1.5:
		return model.AIShooting
	default:
		return model.AIHybrid
	}
}

// Action is the decision a unit makes for one round.
type Action int

const (
	ActionStand Action = iota // stay put and fire (Shooting phase eligible)
	ActionAdvance             // move, forfeiting this round's shooting
	ActionCharge              // declare a charge into melee
	ActionHoldObjective       // move toward/hold the central objective
)

// MaxWeaponRange returns the longest ranged-weapon range the unit can
// bring to bear, or 0 if it has none.
func MaxWeaponRange(u *model.Unit, pool *model.WeaponPool) int {
	maxRange := 0
	for _, idx := range u.RangedWeapons(pool) {
		w := pool.Get(idx)
		if w.R > maxRange {
			maxRange = w.R
		}
	}
	return maxRange
}

// Decide implements the per-round AI policy. distance is the current gap
// to the opposing unit; round and maxRounds drive the objective-preference
// cutoff. Objective preference only overrides engagement while the unit is
// not yet in charge/firing range of the enemy: a unit already close enough
// to fight keeps fighting rather than disengaging toward the center, so a
// healthy unit converging on the objective still ends up trading blows once
// both sides close the gap. The objective-control tie-break between two
// units that both qualify (lower unit index wins) is resolved by the game
// runner when it scores control, not here.
func Decide(u *model.Unit, pool *model.WeaponPool, distance float64, round, maxRounds int) Action {
	switch u.AIType() {
	case model.AIMelee:
		if distance > ChargeRange {
			if preferObjective(u, round, maxRounds) {
				return ActionHoldObjective
			}
			return ActionAdvance
		}
		return ActionCharge
	case model.AIShooting:
		maxRange := float64(MaxWeaponRange(u, pool))
		if distance <= maxRange {
			return ActionStand
		}
		if preferObjective(u, round, maxRounds) {
			return ActionHoldObjective
		}
		return ActionAdvance
	case model.AIHybrid:
		maxRange := float64(MaxWeaponRange(u, pool))
		if distance <= maxRange {
			return ActionStand
		}
		if preferObjective(u, round, maxRounds) {
			return ActionHoldObjective
		}
		return ActionAdvance
	default:
		return ActionAdvance
	}
}

// preferObjective implements the objective policy: a unit at >= 50%
// strength in the second half of the game prefers sitting on the
// objective over engaging.
func preferObjective(u *model.Unit, round, maxRounds int) bool {
	if u.StrengthRatio() < 0.5 {
		return false
	}
	return round >= maxRounds/2
}

// ClosingDistance returns the new distance after a unit moves toward its
// opponent by up to moveInches, never undershooting zero.
func ClosingDistance(distance float64, moveInches int) float64 {
	next := distance - float64(moveInches)
	return math.Max(0, next)
}
