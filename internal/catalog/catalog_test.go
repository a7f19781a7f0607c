package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jruiznavarro/battlesim/internal/model"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "units.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesUnitsModelsWeaponsAndRules(t *testing.T) {
	path := writeCatalog(t, `
# comment line, skipped
unit Marines Loyalist 120 6
model Trooper 4 4 1 5
weapon Rifle 1 24 0
weapon Blade 1 0 0
rule Fearless

unit Ogre Beast 80
model Brute 5 5 3 1
weapon Club 3 0 1 AP:1
`)

	pool := model.NewWeaponPool()
	units, warnings, lines, err := Load(path, pool)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Greater(t, lines, 0)
	require.Len(t, units, 2)

	marines := units[0]
	require.Equal(t, "Marines", marines.Name)
	require.Equal(t, 0, marines.Index)
	require.Equal(t, 6, marines.MoveInches)
	require.Len(t, marines.Models, 5)
	_, ok := marines.HasRule(model.RuleFearless)
	require.True(t, ok)

	ogre := units[1]
	require.Equal(t, 1, ogre.Index)
	require.Equal(t, 6, ogre.MoveInches) // default when omitted
	require.Len(t, ogre.Models, 1)
}

func TestLoadCollectsWarningsWithoutAborting(t *testing.T) {
	path := writeCatalog(t, `
unit Good Faction 10
model Trooper 4 4 1 1
weapon Rifle 1 24 0

bogus line here
unit AlsoGood Faction 20
model Trooper 4 4 1 1
weapon Blade 1 0 0
`)

	pool := model.NewWeaponPool()
	units, warnings, _, err := Load(path, pool)
	require.NoError(t, err)
	require.Len(t, units, 2)
	require.Len(t, warnings, 1)
}

func TestLoadRejectsBlastOnMeleeWeapon(t *testing.T) {
	path := writeCatalog(t, `
unit Bad Faction 10
model Trooper 4 4 1 1
weapon Fist 1 0 0 Blast:3
`)

	pool := model.NewWeaponPool()
	units, warnings, _, err := Load(path, pool)
	require.NoError(t, err)
	require.Empty(t, units[0].Models[0].Weapons) // weapon line rejected, never added
	require.Len(t, warnings, 1)
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	pool := model.NewWeaponPool()
	_, _, _, err := Load("/nonexistent/path/units.txt", pool)
	require.Error(t, err)
}
