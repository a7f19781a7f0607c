package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModelTakeWounds(t *testing.T) {
	m := NewModel("Trooper", 4, 4, 2, nil)
	require.True(t, m.IsAlive())

	overflow := m.ApplyWounds(1)
	require.Equal(t, 0, overflow)
	require.True(t, m.IsAlive())
	require.Equal(t, 1, m.WoundsRemaining)

	overflow = m.ApplyWounds(3)
	require.Equal(t, 2, overflow)
	require.False(t, m.IsAlive())
	require.Equal(t, 0, m.WoundsRemaining)
}

func TestModelDeadModelAbsorbsNothing(t *testing.T) {
	m := NewModel("Trooper", 4, 4, 1, nil)
	m.ApplyWounds(1)
	require.False(t, m.IsAlive())
	overflow := m.ApplyWounds(5)
	require.Equal(t, 5, overflow)
}

func TestWeaponPoolStableHandles(t *testing.T) {
	pool := NewWeaponPool()
	idx := pool.Add(Weapon{Name: "Rifle", A: 1, R: 24, AP: 1})
	idx2 := pool.Add(Weapon{Name: "Blade", A: 2, R: 0})

	require.NotEqual(t, idx, idx2)
	require.Equal(t, "Rifle", pool.Get(idx).Name)
	require.Equal(t, "Blade", pool.Get(idx2).Name)
	require.Equal(t, 2, pool.Len())
}

func TestWeaponValidateRejectsBlastOnMelee(t *testing.T) {
	w := Weapon{Name: "Fist", A: 1, R: 0, Rules: []Rule{{Tag: RuleBlast, Value: 3}}}
	require.Error(t, w.Validate())

	w2 := Weapon{Name: "Launcher", A: 1, R: 24, Rules: []Rule{{Tag: RuleBlast, Value: 3}}}
	require.NoError(t, w2.Validate())
}

func buildTestUnit(t *testing.T, pool *WeaponPool, nModels int, weapons []Weapon) *Unit {
	t.Helper()
	var idxs []WeaponIndex
	for _, w := range weapons {
		idxs = append(idxs, pool.Add(w))
	}
	models := make([]Model, nModels)
	for i := range models {
		models[i] = NewModel("Model", 4, 4, 1, idxs)
	}
	return NewUnit(0, "TestUnit", "TestFaction", 100, models, nil, pool)
}

func TestUnitAliveAndStrengthRatio(t *testing.T) {
	pool := NewWeaponPool()
	u := buildTestUnit(t, pool, 5, []Weapon{{Name: "Blade", A: 1, R: 0}})
	require.True(t, u.IsAlive())
	require.Equal(t, 5, u.AliveModels())
	require.Equal(t, 1.0, u.StrengthRatio())

	u.Models[0].ApplyWounds(1)
	require.Equal(t, 4, u.AliveModels())
	require.InDelta(t, 0.8, u.StrengthRatio(), 0.001)
}

func TestUnitLeastWoundedLivingModelTieBreak(t *testing.T) {
	pool := NewWeaponPool()
	u := buildTestUnit(t, pool, 3, []Weapon{{Name: "Blade", A: 1, R: 0, AP: 0}})
	// give models different tough so wounds_remaining differs
	u.Models[0].Tough = 3
	u.Models[0].WoundsRemaining = 3
	u.Models[1].Tough = 3
	u.Models[1].WoundsRemaining = 1
	u.Models[2].Tough = 3
	u.Models[2].WoundsRemaining = 1

	target := u.LeastWoundedLivingModel()
	require.NotNil(t, target)
	require.Equal(t, &u.Models[1], target) // lowest index among ties
}

func TestUnitClassifiesAggregateAttacks(t *testing.T) {
	pool := NewWeaponPool()
	u := buildTestUnit(t, pool, 5, []Weapon{
		{Name: "Rifle", A: 1, R: 24},
		{Name: "Blade", A: 1, R: 0},
	})
	require.Equal(t, 5, u.TotalMeleeAttacks())
	require.Equal(t, 5, u.TotalRangedAttacks())
}

func TestUnitMeleeAndRangedWeaponDedup(t *testing.T) {
	pool := NewWeaponPool()
	u := buildTestUnit(t, pool, 3, []Weapon{
		{Name: "Rifle", A: 2, R: 24},
		{Name: "Blade", A: 2, R: 0},
	})
	melee := u.MeleeWeapons(pool)
	ranged := u.RangedWeapons(pool)
	require.Len(t, melee, 1)
	require.Len(t, ranged, 1)
	require.Equal(t, 3, u.ModelsWithWeapon(melee[0]))
}
