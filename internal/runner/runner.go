package runner

import (
	"math"

	"github.com/jruiznavarro/battlesim/internal/ai"
	"github.com/jruiznavarro/battlesim/internal/combat"
	"github.com/jruiznavarro/battlesim/internal/dice"
	"github.com/jruiznavarro/battlesim/internal/model"
)

// RunMatch plays cfg.GamesPerMatch independent games between catalog units
// a and b and returns the accumulated MatchResult. a and b are
// never mutated; each game clones fresh copies.
func RunMatch(roller *dice.Stream, reg *model.RuleRegistry, pool *model.WeaponPool, a, b *model.Unit, cfg Config) MatchResult {
	var result MatchResult
	for g := 0; g < cfg.GamesPerMatch; g++ {
		result.addGame(runGame(roller, reg, pool, a, b, cfg))
	}
	return result
}

// RunVerbose plays a single game and returns its MatchResult alongside a
// structured per-round trace, for the showcase-replay front-end.
func RunVerbose(roller *dice.Stream, reg *model.RuleRegistry, pool *model.WeaponPool, a, b *model.Unit, cfg Config) (MatchResult, []RoundLog) {
	var logs []RoundLog
	g := runGameTraced(roller, reg, pool, a, b, cfg, &logs)
	var result MatchResult
	result.addGame(g)
	return result, logs
}

func runGame(roller *dice.Stream, reg *model.RuleRegistry, pool *model.WeaponPool, a, b *model.Unit, cfg Config) GameResult {
	return runGameTraced(roller, reg, pool, a, b, cfg, nil)
}

func runGameTraced(roller *dice.Stream, reg *model.RuleRegistry, pool *model.WeaponPool, a, b *model.Unit, cfg Config, logs *[]RoundLog) GameResult {
	st := &GameState{
		A:        cloneUnit(a),
		B:        cloneUnit(b),
		Round:    1,
		Distance: cfg.StartingDistanceInches,
		aFirst:   roller.RollD6()%2 == 0,
	}

	for st.Round <= cfg.MaxRounds && st.A.IsAlive() && st.B.IsAlive() {
		actionA, actionB := movementPhase(pool, st, cfg)
		shootingPhase(roller, reg, pool, st, actionA, actionB)
		meleePhase(roller, reg, pool, st)
		moraleRoutedA, moraleRoutedB := moralePhase(roller, st)
		objectivePhase(st, actionA, actionB)

		if logs != nil {
			*logs = append(*logs, RoundLog{
				Round:    st.Round,
				Distance: st.Distance,
				Description: roundDescription(st, actionA, actionB, moraleRoutedA, moraleRoutedB),
			})
		}

		st.Round++
	}

	return finalize(st)
}

// movementPhase runs step 1: each side decides, distance
// updates, and charge flags are set for Melee's attack-first ordering.
func movementPhase(pool *model.WeaponPool, st *GameState, cfg Config) (ai.Action, ai.Action) {
	if st.A.AIType() == model.AIUnknown {
		st.A.SetAIType(ai.Classify(st.A))
	}
	if st.B.AIType() == model.AIUnknown {
		st.B.SetAIType(ai.Classify(st.B))
	}

	actionA := ai.Decide(st.A, pool, st.Distance, st.Round, cfg.MaxRounds)
	actionB := ai.Decide(st.B, pool, st.Distance, st.Round, cfg.MaxRounds)

	st.chargedA = actionA == ai.ActionCharge
	st.chargedB = actionB == ai.ActionCharge

	switch {
	case st.chargedA || st.chargedB:
		st.Distance = 0
	case actionA == ai.ActionAdvance || actionA == ai.ActionHoldObjective:
		st.Distance = ai.ClosingDistance(st.Distance, st.A.MoveInches)
	case actionB == ai.ActionAdvance || actionB == ai.ActionHoldObjective:
		st.Distance = ai.ClosingDistance(st.Distance, st.B.MoveInches)
	}

	return actionA, actionB
}

// shootingPhase runs step 2: sides that stood (did not advance or charge)
// fire. Side order is randomized once per game and fixed thereafter.
func shootingPhase(roller *dice.Stream, reg *model.RuleRegistry, pool *model.WeaponPool, st *GameState, actionA, actionB ai.Action) {
	fire := func(attacker, defender *model.Unit, dealtWounds, dealtKills *int) {
		before := defender.AliveModels()
		res := combat.ResolveAttack(roller, reg, pool, attacker, defender, combat.Context{Phase: combat.Shooting})
		*dealtWounds += res.TotalWounds
		*dealtKills += before - defender.AliveModels()
	}

	first, second := order(st)
	for _, side := range []bool{first, second} {
		if side {
			if actionA == ai.ActionStand {
				fire(st.A, st.B, &st.WoundsA, &st.KillsA)
			}
		} else {
			if actionB == ai.ActionStand {
				fire(st.B, st.A, &st.WoundsB, &st.KillsB)
			}
		}
	}
}

// meleePhase runs step 3: if both sides closed to melee range (distance
// 0), resolve attacks charger-first, falling back to the fixed game order
// if neither or both charged.
func meleePhase(roller *dice.Stream, reg *model.RuleRegistry, pool *model.WeaponPool, st *GameState) {
	if st.Distance > 0 {
		return
	}
	if !st.A.IsAlive() || !st.B.IsAlive() {
		return
	}

	aFirst := st.aFirst
	switch {
	case st.chargedA && !st.chargedB:
		aFirst = true
	case st.chargedB && !st.chargedA:
		aFirst = false
	}

	strike := func(attacker, defender *model.Unit, dealtWounds, dealtKills *int) {
		if !attacker.IsAlive() || !defender.IsAlive() {
			return
		}
		before := defender.AliveModels()
		res := combat.ResolveAttack(roller, reg, pool, attacker, defender, combat.Context{Phase: combat.Melee, Charging: attacker == st.A && st.chargedA || attacker == st.B && st.chargedB})
		*dealtWounds += res.TotalWounds
		*dealtKills += before - defender.AliveModels()
	}

	if aFirst {
		strike(st.A, st.B, &st.WoundsA, &st.KillsA)
		strike(st.B, st.A, &st.WoundsB, &st.KillsB)
	} else {
		strike(st.B, st.A, &st.WoundsB, &st.KillsB)
		strike(st.A, st.B, &st.WoundsA, &st.KillsA)
	}
}

// moralePhase runs step 4: every round, a side with at most half of its
// starting model count still alive tests morale. Losses are measured against
// the game's starting strength, not against the strength the side had at the
// start of this round. Failure routs ceil(alive/2) more models, and a second
// failure this game wipes the unit.
func moralePhase(roller *dice.Stream, st *GameState) (routedA, routedB bool) {
	routedA = testMorale(roller, st.A, &st.routedOnceA)
	routedB = testMorale(roller, st.B, &st.routedOnceB)
	return
}

func testMorale(roller *dice.Stream, u *model.Unit, routedOnce *bool) bool {
	if !u.IsAlive() {
		return false
	}
	startAlive := u.StartingModels()
	alive := u.AliveModels()
	if startAlive == 0 || float64(alive) > float64(startAlive)/2 {
		return false
	}

	q := representativeQuality(u)
	if roller.RollMorale(q, 0) {
		return false
	}

	if *routedOnce {
		for i := range u.Models {
			u.Models[i].ApplyWounds(u.Models[i].WoundsRemaining)
		}
		return true
	}

	*routedOnce = true
	toRemove := int(math.Ceil(float64(alive) / 2))
	for removed := 0; removed < toRemove; removed++ {
		m := u.LeastWoundedLivingModel()
		if m == nil {
			break
		}
		m.ApplyWounds(m.WoundsRemaining)
	}
	return true
}

func representativeQuality(u *model.Unit) int {
	for i := range u.Models {
		if u.Models[i].IsAlive() {
			return u.Models[i].Q
		}
	}
	return 4
}

// objectivePhase runs step 5: the counter increments only when exactly one
// side has a living model within control distance (in this abstraction,
// the side that chose ActionHoldObjective while alive). A mutual hold is
// contested and scores neither side, the same as neither side holding.
func objectivePhase(st *GameState, actionA, actionB ai.Action) {
	aHolds := st.A.IsAlive() && actionA == ai.ActionHoldObjective
	bHolds := st.B.IsAlive() && actionB == ai.ActionHoldObjective

	switch {
	case aHolds && !bHolds:
		st.RoundsHoldingA++
	case bHolds && !aHolds:
		st.RoundsHoldingB++
	}
}

// order returns the fixed per-game side order as (firstIsA, secondIsA).
func order(st *GameState) (bool, bool) {
	if st.aFirst {
		return true, false
	}
	return false, true
}

// finalize applies the winner rule: rounds_holding primary,
// strength ratio secondary, wounds inflicted tertiary, draw on full tie.
func finalize(st *GameState) GameResult {
	winner := -1
	switch {
	case st.RoundsHoldingA != st.RoundsHoldingB:
		if st.RoundsHoldingA > st.RoundsHoldingB {
			winner = 0
		} else {
			winner = 1
		}
	case st.A.StrengthRatio() != st.B.StrengthRatio():
		if st.A.StrengthRatio() > st.B.StrengthRatio() {
			winner = 0
		} else {
			winner = 1
		}
	case st.WoundsA != st.WoundsB:
		if st.WoundsA > st.WoundsB {
			winner = 0
		} else {
			winner = 1
		}
	}

	return GameResult{
		Winner:       winner,
		RoundsPlayed: st.Round - 1,
		WoundsA:      st.WoundsA,
		WoundsB:      st.WoundsB,
		KillsA:       st.KillsA,
		KillsB:       st.KillsB,
		HoldingA:     st.RoundsHoldingA,
		HoldingB:     st.RoundsHoldingB,
	}
}

func roundDescription(st *GameState, actionA, actionB ai.Action, routedA, routedB bool) string {
	desc := actionLabel(actionA) + " vs " + actionLabel(actionB)
	if routedA {
		desc += "; A routed"
	}
	if routedB {
		desc += "; B routed"
	}
	return desc
}

func actionLabel(a ai.Action) string {
	switch a {
	case ai.ActionStand:
		return "stand"
	case ai.ActionAdvance:
		return "advance"
	case ai.ActionCharge:
		return "charge"
	case ai.ActionHoldObjective:
		return "hold"
	default:
		return "unknown"
	}
}
