package combat

import (
	"github.com/jruiznavarro/battlesim/internal/dice"
	"github.com/jruiznavarro/battlesim/internal/model"
)

// Result is the output of resolving one attack profile, or a whole phase
// of them. It is POD and cheap to return by value.
type Result struct {
	TotalHits            int
	TotalWounds          int
	DefenderModelsKilled int
	SixesRolled          int
}

func (r *Result) add(other Result) {
	r.TotalHits += other.TotalHits
	r.TotalWounds += other.TotalWounds
	r.DefenderModelsKilled += other.DefenderModelsKilled
	r.SixesRolled += other.SixesRolled
}

// ResolveAttack resolves every eligible weapon profile of attacker against
// defender for the given phase. A defender with no living
// models short-circuits to a zero Result.
func ResolveAttack(roller *dice.Stream, reg *model.RuleRegistry, pool *model.WeaponPool, attacker, defender *model.Unit, ctx Context) Result {
	var total Result
	if defender.AliveModels() == 0 {
		return total
	}

	var profiles []model.WeaponIndex
	switch ctx.Phase {
	case Shooting:
		profiles = attacker.RangedWeapons(pool)
	case Melee:
		profiles = attacker.MeleeWeapons(pool)
	}

	for _, idx := range profiles {
		if defender.AliveModels() == 0 {
			break
		}
		total.add(resolveProfile(roller, reg, pool.Get(idx), idx, attacker, defender, ctx))
	}
	return total
}

// resolveProfile resolves one weapon against the defender: hit roll,
// defense roll, and wound allocation.
func resolveProfile(roller *dice.Stream, reg *model.RuleRegistry, w *model.Weapon, idx model.WeaponIndex, attacker, defender *model.Unit, ctx Context) Result {
	modelCount := attacker.ModelsWithWeapon(idx)
	if modelCount == 0 {
		// Weapon not actually carried by any living model this resolution
		// (can happen after casualties remove the last bearer mid-phase).
		return Result{}
	}

	effectiveAttacks := w.A * modelCount
	if effectiveAttacks <= 0 {
		return Result{}
	}

	q := attackerQuality(attacker, w)
	hitMod := ctx.HitModifier()
	_, hasFurious := attacker.HasRule(model.RuleFurious)
	furious := hasFurious && ctx.Phase == Melee && ctx.Charging && appliesToUnit(reg, model.RuleFurious)

	buckets := rollToHit(roller, reg, effectiveAttacks, q, hitMod, w, furious)

	var res Result
	res.TotalHits = buckets.normalHits + buckets.sixesRending + buckets.sixesLethal + buckets.sixesPlain
	res.SixesRolled = buckets.sixesRending + buckets.sixesLethal + buckets.sixesPlain

	// Blast(n): defender has >= n living models and the weapon is ranged
	// (Validate already forbids Blast on melee). Multiplies hits, not
	// attacks, after the hit roll.
	if blastRule, ok := w.HasRule(model.RuleBlast); ok && appliesToWeapon(reg, model.RuleBlast) && w.IsRanged() && defender.AliveModels() >= blastRule.Value {
		buckets.normalHits *= blastRule.Value
		buckets.sixesRending *= blastRule.Value
		buckets.sixesPlain *= blastRule.Value
		// Lethal sixes auto-wound individually; Blast still multiplies the
		// proc count since each is still "a hit".
		buckets.sixesLethal *= blastRule.Value
		res.TotalHits = buckets.normalHits + buckets.sixesRending + buckets.sixesLethal + buckets.sixesPlain
		res.SixesRolled = buckets.sixesRending + buckets.sixesLethal + buckets.sixesPlain
	}

	ap := effectiveAP(reg, w)
	regen := regenerationValue(reg, defender)
	_, isPoisoned := w.HasRule(model.RulePoison)

	// Lethal sixes bypass the defense roll entirely (auto-wound).
	autoWounds := buckets.sixesLethal

	// Rending sixes save against the weapon's effective AP plus 4.
	normalWoundAttempts := buckets.normalHits + buckets.sixesPlain
	rendingWoundAttempts := buckets.sixesRending

	defenseValue := representativeDefense(defender)
	failedNormal := roller.RollDefenseTest(normalWoundAttempts, defenseValue, ap, regen, isPoisoned)
	failedRending := 0
	if rendingWoundAttempts > 0 {
		failedRending = roller.RollDefenseTest(rendingWoundAttempts, defenseValue, ap+4, regen, isPoisoned)
	}

	totalFailedSaves := failedNormal + failedRending + autoWounds
	res.TotalWounds = totalFailedSaves

	deadlyValue := 1
	if deadlyRule, ok := w.HasRule(model.RuleDeadly); ok {
		deadlyValue = deadlyRule.Value
	}
	_, hasTear := w.HasRule(model.RuleTear)

	killedBefore := countDead(defender)
	allocateWounds(defender, totalFailedSaves, deadlyValue, hasTear, sniperTarget(reg, w, defender))
	res.DefenderModelsKilled = countDead(defender) - killedBefore

	return res
}

// appliesToWeapon reports whether tag's registry descriptor permits it on
// a weapon: rules are looked up through the registry before a tag's
// effect is trusted.
func appliesToWeapon(reg *model.RuleRegistry, tag model.RuleTag) bool {
	d := reg.Describe(tag)
	return d.AppliesTo == model.AppliesWeapon || d.AppliesTo == model.AppliesBoth
}

// appliesToUnit is appliesToWeapon's unit-level counterpart.
func appliesToUnit(reg *model.RuleRegistry, tag model.RuleTag) bool {
	d := reg.Describe(tag)
	return d.AppliesTo == model.AppliesUnit || d.AppliesTo == model.AppliesBoth
}

// hitBuckets splits a weapon's hit roll into the categories that resolve
// differently downstream: normal hits, natural sixes under Rending,
// natural sixes under Lethal, and natural sixes with no special rule.
type hitBuckets struct {
	normalHits   int
	sixesRending int
	sixesLethal  int
	sixesPlain   int
}

// rollToHit rolls effectiveAttacks dice against q+modifier, applying
// Reliable (re-roll natural 1s once) and then, for a charging unit with
// Furious, re-rolling any still-failed hit once more, before bucketing
// sixes by the weapon's proc rules.
func rollToHit(roller *dice.Stream, reg *model.RuleRegistry, attacks, q, modifier int, w *model.Weapon, furious bool) hitBuckets {
	_, reliable := w.HasRule(model.RuleReliable)
	reliable = reliable && appliesToWeapon(reg, model.RuleReliable)
	_, rending := w.HasRule(model.RuleRending)
	rending = rending && appliesToWeapon(reg, model.RuleRending)
	_, lethal := w.HasRule(model.RuleLethal)
	lethal = lethal && appliesToWeapon(reg, model.RuleLethal)

	var b hitBuckets
	for i := 0; i < attacks; i++ {
		roll := roller.RollD6()
		if roll == 1 && reliable {
			roll = roller.RollD6()
		}
		if furious && (roll == 1 || roll+modifier < q) {
			roll = roller.RollD6()
		}
		if roll == 1 {
			continue
		}
		isSix := roll == 6
		succeeds := roll+modifier >= q

		switch {
		case isSix && lethal:
			b.sixesLethal++
		case isSix && rending && succeeds:
			b.sixesRending++
		case isSix && succeeds:
			b.sixesPlain++
		case succeeds:
			b.normalHits++
		}
	}
	return b
}

// attackerQuality resolves the Q value for a weapon profile: the Q of the
// unit's first living model, whether or not that model carries the weapon
// (squads in this rules system field uniform-quality models).
func attackerQuality(attacker *model.Unit, w *model.Weapon) int {
	for i := range attacker.Models {
		if attacker.Models[i].IsAlive() {
			return attacker.Models[i].Q
		}
	}
	return 4
}

// representativeDefense returns the defending unit's defense value, read
// from its first living model (uniform within a squad).
func representativeDefense(defender *model.Unit) int {
	for i := range defender.Models {
		if defender.Models[i].IsAlive() {
			return defender.Models[i].D
		}
	}
	return 4
}

// effectiveAP folds in a weapon- or unit-level AP(n) rule on top of the
// weapon's baked-in armor-piercing value.
func effectiveAP(reg *model.RuleRegistry, w *model.Weapon) int {
	ap := w.AP
	if r, ok := w.HasRule(model.RuleAP); ok && appliesToWeapon(reg, model.RuleAP) {
		ap += r.Value
	}
	return ap
}

// regenerationValue returns the defender's Regeneration re-roll count, or
// 0 if it does not carry the rule.
func regenerationValue(reg *model.RuleRegistry, defender *model.Unit) int {
	if r, ok := defender.HasRule(model.RuleRegeneration); ok && appliesToUnit(reg, model.RuleRegeneration) {
		return r.Value
	}
	return 0
}

// sniperTarget resolves Sniper's "attacker selects defender model":
// targets the toughest living model, approximating "pick out the
// character" without a keyword system.
func sniperTarget(reg *model.RuleRegistry, w *model.Weapon, defender *model.Unit) *model.Model {
	if _, ok := w.HasRule(model.RuleSniper); !ok || !appliesToWeapon(reg, model.RuleSniper) {
		return nil
	}
	var best *model.Model
	for i := range defender.Models {
		if !defender.Models[i].IsAlive() {
			continue
		}
		if best == nil || defender.Models[i].Tough > best.Tough {
			best = &defender.Models[i]
		}
	}
	return best
}

// allocateWounds applies failedSaves worth of damage to defender, packeted
// by deadlyValue wounds per failed save (Deadly(n), default n=1), in
// deterministic least-wounded-model order unless forced is non-nil
// (Sniper). Overflow beyond a kill is discarded unless the weapon has Tear.
func allocateWounds(defender *model.Unit, failedSaves, deadlyValue int, hasTear bool, forced *model.Model) {
	for i := 0; i < failedSaves; i++ {
		target := forced
		if target == nil {
			target = defender.LeastWoundedLivingModel()
		}
		if target == nil {
			return
		}
		overflow := target.ApplyWounds(deadlyValue)
		for hasTear && overflow > 0 {
			next := defender.LeastWoundedLivingModel()
			if next == nil || next == target {
				return
			}
			target = next
			overflow = target.ApplyWounds(overflow)
		}
	}
}

func countDead(u *model.Unit) int {
	return u.StartingModels() - u.AliveModels()
}
