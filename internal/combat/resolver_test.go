package combat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jruiznavarro/battlesim/internal/dice"
	"github.com/jruiznavarro/battlesim/internal/model"
)

func unitOf(pool *model.WeaponPool, index int, name string, q, d, tough, n int, weapons []model.Weapon) *model.Unit {
	var idxs []model.WeaponIndex
	for _, w := range weapons {
		idxs = append(idxs, pool.Add(w))
	}
	models := make([]model.Model, n)
	for i := range models {
		models[i] = model.NewModel(name, q, d, tough, idxs)
	}
	return model.NewUnit(index, name, "Test", 0, models, nil, pool)
}

func TestResolveAttackZeroDefenderShortCircuits(t *testing.T) {
	pool := model.NewWeaponPool()
	reg := model.NewRuleRegistry()
	roller := dice.NewStream(1)

	attacker := unitOf(pool, 0, "A", 4, 4, 1, 5, []model.Weapon{{Name: "Blade", A: 2, R: 0}})
	defender := unitOf(pool, 1, "B", 4, 4, 1, 0, nil)

	res := ResolveAttack(roller, reg, pool, attacker, defender, Context{Phase: Melee})
	require.Equal(t, Result{}, res)
}

func TestResolveAttackMirrorSymmetry(t *testing.T) {
	pool := model.NewWeaponPool()
	reg := model.NewRuleRegistry()

	aWins, bWins := 0, 0
	const games = 2000
	for g := 0; g < games; g++ {
		roller := dice.NewStream(uint64(g + 1))
		a := unitOf(pool, 0, "A", 4, 4, 1, 5, []model.Weapon{{Name: "Blade", A: 2, R: 0}})
		b := unitOf(pool, 1, "A", 4, 4, 1, 5, []model.Weapon{{Name: "Blade", A: 2, R: 0}})

		ResolveAttack(roller, reg, pool, a, b, Context{Phase: Melee})
		ResolveAttack(roller, reg, pool, b, a, Context{Phase: Melee})

		if a.AliveModels() > b.AliveModels() {
			aWins++
		} else if b.AliveModels() > a.AliveModels() {
			bWins++
		}
	}
	total := aWins + bWins
	require.Greater(t, total, 0)
	rate := float64(aWins) / float64(total)
	require.InDelta(t, 0.5, rate, 0.15)
}

func BenchmarkResolveAttack(b *testing.B) {
	pool := model.NewWeaponPool()
	reg := model.NewRuleRegistry()
	roller := dice.NewStream(1)

	attacker := unitOf(pool, 0, "A", 4, 4, 1, 5, []model.Weapon{{Name: "Blade", A: 2, R: 0}})
	defender := unitOf(pool, 1, "B", 4, 4, 1, 5, []model.Weapon{{Name: "Blade", A: 2, R: 0}})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ResolveAttack(roller, reg, pool, attacker, defender, Context{Phase: Melee})
	}
}

func TestResolveAttackEliteBeatsBasic(t *testing.T) {
	pool := model.NewWeaponPool()
	reg := model.NewRuleRegistry()

	eliteWins, basicWins := 0, 0
	const games = 2000
	for g := 0; g < games; g++ {
		roller := dice.NewStream(uint64(1000 + g))
		elite := unitOf(pool, 0, "Elite", 3, 3, 1, 5, []model.Weapon{{Name: "Blade", A: 2, R: 0}})
		basic := unitOf(pool, 1, "Basic", 4, 5, 1, 5, []model.Weapon{{Name: "Blade", A: 2, R: 0}})

		ResolveAttack(roller, reg, pool, elite, basic, Context{Phase: Melee})
		ResolveAttack(roller, reg, pool, basic, elite, Context{Phase: Melee})

		if elite.AliveModels() > basic.AliveModels() {
			eliteWins++
		} else if basic.AliveModels() > elite.AliveModels() {
			basicWins++
		}
	}
	require.Greater(t, eliteWins, basicWins)
}

func TestResolveAttackBlastMultipliesHits(t *testing.T) {
	pool := model.NewWeaponPool()
	reg := model.NewRuleRegistry()

	totalHitsNoBlast, totalHitsBlast := 0, 0
	const trials = 5000
	for g := 0; g < trials; g++ {
		attacker := unitOf(pool, 0, "Gunner", 4, 4, 1, 1, []model.Weapon{{Name: "Rifle", A: 1, R: 24}})
		defender := unitOf(pool, 1, "Squad", 4, 4, 5, 5, nil)
		roller := dice.NewStream(uint64(g + 1))
		res := ResolveAttack(roller, reg, pool, attacker, defender, Context{Phase: Shooting})
		totalHitsNoBlast += res.TotalHits
	}
	for g := 0; g < trials; g++ {
		attacker := unitOf(pool, 0, "Gunner", 4, 4, 1, 1, []model.Weapon{{Name: "Launcher", A: 1, R: 24, Rules: []model.Rule{{Tag: model.RuleBlast, Value: 3}}}})
		defender := unitOf(pool, 1, "Squad", 4, 4, 5, 5, nil)
		roller := dice.NewStream(uint64(g + 1))
		res := ResolveAttack(roller, reg, pool, attacker, defender, Context{Phase: Shooting})
		totalHitsBlast += res.TotalHits
	}

	ratio := float64(totalHitsBlast) / float64(totalHitsNoBlast)
	require.InDelta(t, 3.0, ratio, 0.3)
}

func TestResolveAttackToughReducesKillsRelativeToWounds(t *testing.T) {
	pool := model.NewWeaponPool()
	reg := model.NewRuleRegistry()

	var totalWounds, totalKills int
	const trials = 5000
	for g := 0; g < trials; g++ {
		attacker := unitOf(pool, 0, "Tank-Hunter", 4, 4, 1, 10, []model.Weapon{{Name: "Las", A: 1, R: 24, AP: 2}})
		defender := unitOf(pool, 1, "Walker", 4, 4, 3, 1, nil)
		roller := dice.NewStream(uint64(g + 1))
		res := ResolveAttack(roller, reg, pool, attacker, defender, Context{Phase: Shooting})
		totalWounds += res.TotalWounds
		totalKills += res.DefenderModelsKilled
	}
	require.Greater(t, totalWounds, 0)
	// with Tough(3), a kill needs ~3 wounds: kills should track wounds/3.
	require.Less(t, float64(totalKills), float64(totalWounds)/3+float64(trials)*0.05)
}

func TestResolveAttackFuriousRerollsOnlyWhenChargingInMelee(t *testing.T) {
	pool := model.NewWeaponPool()
	reg := model.NewRuleRegistry()

	furiousUnit := func(index int) *model.Unit {
		melee := pool.Add(model.Weapon{Name: "Axe", A: 4, R: 0})
		ranged := pool.Add(model.Weapon{Name: "Rifle", A: 4, R: 24})
		models := make([]model.Model, 10)
		for i := range models {
			models[i] = model.NewModel("M", 5, 4, 1, []model.WeaponIndex{melee, ranged})
		}
		return model.NewUnit(index, "Furious Mob", "T", 0, models, []model.Rule{{Tag: model.RuleFurious}}, pool)
	}

	var hitsCharging, hitsNotCharging, hitsShooting int
	const trials = 3000
	for g := 0; g < trials; g++ {
		attacker := furiousUnit(0)
		defender := unitOf(pool, 1, "Target", 4, 4, 5, 10, nil)
		roller := dice.NewStream(uint64(g + 1))
		res := ResolveAttack(roller, reg, pool, attacker, defender, Context{Phase: Melee, Charging: true})
		hitsCharging += res.TotalHits
	}
	for g := 0; g < trials; g++ {
		attacker := furiousUnit(0)
		defender := unitOf(pool, 1, "Target", 4, 4, 5, 10, nil)
		roller := dice.NewStream(uint64(g + 1))
		res := ResolveAttack(roller, reg, pool, attacker, defender, Context{Phase: Melee, Charging: false})
		hitsNotCharging += res.TotalHits
	}
	for g := 0; g < trials; g++ {
		attacker := furiousUnit(0)
		defender := unitOf(pool, 1, "Target", 4, 4, 5, 10, nil)
		roller := dice.NewStream(uint64(g + 1))
		res := ResolveAttack(roller, reg, pool, attacker, defender, Context{Phase: Shooting, Charging: true})
		hitsShooting += res.TotalHits
	}

	require.Greater(t, hitsCharging, hitsNotCharging)
	// Furious only re-rolls melee hits; a shooting profile on the same
	// charging unit sees no benefit.
	require.InDelta(t, hitsShooting, hitsNotCharging, float64(hitsNotCharging)*0.2)
}

func TestAllocateWoundsTearCarriesOverflow(t *testing.T) {
	pool := model.NewWeaponPool()
	tearWeapon := pool.Add(model.Weapon{Name: "Greatsword", A: 1, R: 0, Rules: []model.Rule{
		{Tag: model.RuleDeadly, Value: 5},
		{Tag: model.RuleTear},
	}})
	models := []model.Model{
		model.NewModel("Grunt1", 4, 4, 1, []model.WeaponIndex{tearWeapon}),
		model.NewModel("Grunt2", 4, 4, 1, []model.WeaponIndex{tearWeapon}),
	}
	u := model.NewUnit(0, "Squad", "T", 0, models, nil, pool)

	allocateWounds(u, 1, 5, true, nil)
	require.Equal(t, 0, u.AliveModels())
}

func TestAllocateWoundsWithoutTearDiscardsOverflow(t *testing.T) {
	pool := model.NewWeaponPool()
	w := pool.Add(model.Weapon{Name: "Greatsword", A: 1, R: 0, Rules: []model.Rule{{Tag: model.RuleDeadly, Value: 5}}})
	models := []model.Model{
		model.NewModel("Grunt1", 4, 4, 1, []model.WeaponIndex{w}),
		model.NewModel("Grunt2", 4, 4, 1, []model.WeaponIndex{w}),
	}
	u := model.NewUnit(0, "Squad", "T", 0, models, nil, pool)

	allocateWounds(u, 1, 5, false, nil)
	require.Equal(t, 1, u.AliveModels())
}
