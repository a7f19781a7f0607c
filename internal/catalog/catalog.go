// Package catalog implements the unit-catalog text format ingestion the
// engine consumes as an external collaborator's interface: a
// thin text transducer, not part of the simulator's design complexity.
package catalog

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jruiznavarro/battlesim/internal/model"
)

var ruleNames = map[string]model.RuleTag{
	"Blast": model.RuleBlast, "Rending": model.RuleRending, "Deadly": model.RuleDeadly,
	"Poison": model.RulePoison, "Lock-On": model.RuleLockOn, "Sniper": model.RuleSniper,
	"Lethal": model.RuleLethal, "Reliable": model.RuleReliable, "Tough": model.RuleTough,
	"Fearless": model.RuleFearless, "Devout": model.RuleDevout, "Regeneration": model.RuleRegeneration,
	"Indirect": model.RuleIndirect, "AP": model.RuleAP, "Furious": model.RuleFurious,
	"Relentless": model.RuleRelentless, "Impact": model.RuleImpact, "Counter": model.RuleCounter,
	"Entrenched": model.RuleEntrenched, "Transport": model.RuleTransport, "Ambush": model.RuleAmbush,
	"Flying": model.RuleFlying, "Stealth": model.RuleStealth, "Scout": model.RuleScout,
	"Strider": model.RuleStrider, "Slow": model.RuleSlow, "Immobile": model.RuleImmobile,
	"Fear": model.RuleFear, "Caster": model.RuleCaster, "Psychic": model.RulePsychic,
	"Bane": model.RuleBane, "Dazzling": model.RuleDazzling, "Phasing": model.RulePhasing,
	"Hero": model.RuleHeroChampion, "Heal": model.RuleHeal, "Repair": model.RuleRepair,
	"Tank-Hunter": model.RuleTankHunter, "Beam": model.RuleBeam, "One Use": model.RuleOneUse,
	"War-Torn": model.RuleWarTorn, "Tear": model.RuleTear,
}

// Load parses the catalog text file at path: blank lines and lines
// starting with '#' are skipped; each unit starts with a "unit" line and
// accumulates "model"/"weapon"/"rule" lines until the next "unit" line or
// EOF. Malformed lines are collected as non-fatal warnings rather than
// aborting the parse; the caller decides whether an empty result plus
// warnings is a fatal InputError.
func Load(path string, pool *model.WeaponPool) (units []*model.Unit, warnings []error, linesProcessed int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	var (
		cur        *pendingUnit
		index      int
		lineNumber int
	)

	flush := func() {
		if cur == nil {
			return
		}
		units = append(units, cur.build(index, pool))
		index++
		cur = nil
	}

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lineNumber++
		linesProcessed++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		kw := strings.ToLower(fields[0])

		switch kw {
		case "unit":
			flush()
			u, perr := parseUnitLine(fields)
			if perr != nil {
				warnings = append(warnings, fmt.Errorf("line %d: %w", lineNumber, perr))
				continue
			}
			cur = u
		case "model":
			if cur == nil {
				warnings = append(warnings, fmt.Errorf("line %d: model line before any unit line", lineNumber))
				continue
			}
			m, perr := parseModelLine(fields)
			if perr != nil {
				warnings = append(warnings, fmt.Errorf("line %d: %w", lineNumber, perr))
				continue
			}
			cur.models = append(cur.models, m)
		case "weapon":
			if cur == nil || len(cur.models) == 0 {
				warnings = append(warnings, fmt.Errorf("line %d: weapon line before any model line", lineNumber))
				continue
			}
			w, perr := parseWeaponLine(fields)
			if perr != nil {
				warnings = append(warnings, fmt.Errorf("line %d: %w", lineNumber, perr))
				continue
			}
			last := &cur.models[len(cur.models)-1]
			last.weapons = append(last.weapons, w)
		case "rule":
			if cur == nil {
				warnings = append(warnings, fmt.Errorf("line %d: rule line before any unit line", lineNumber))
				continue
			}
			r, perr := parseRuleLine(fields)
			if perr != nil {
				warnings = append(warnings, fmt.Errorf("line %d: %w", lineNumber, perr))
				continue
			}
			cur.rules = append(cur.rules, r)
		default:
			warnings = append(warnings, fmt.Errorf("line %d: unrecognized keyword %q", lineNumber, fields[0]))
		}
	}
	flush()

	if serr := sc.Err(); serr != nil {
		return units, warnings, linesProcessed, fmt.Errorf("catalog: scan %s: %w", path, serr)
	}
	return units, warnings, linesProcessed, nil
}

type pendingModel struct {
	name           string
	q, d, tough, n int
	weapons        []model.Weapon
}

type pendingUnit struct {
	name, faction string
	points        int
	move          int
	models        []pendingModel
	rules         []model.Rule
}

func (p *pendingUnit) build(index int, pool *model.WeaponPool) *model.Unit {
	var models []model.Model
	for _, pm := range p.models {
		var idxs []model.WeaponIndex
		for _, w := range pm.weapons {
			idxs = append(idxs, pool.Add(w))
		}
		for i := 0; i < pm.n; i++ {
			models = append(models, model.NewModel(pm.name, pm.q, pm.d, pm.tough, idxs))
		}
	}
	u := model.NewUnit(index, p.name, p.faction, p.points, models, p.rules, pool)
	if p.move > 0 {
		u.MoveInches = p.move
	}
	return u
}

// parseUnitLine: unit <name> <faction> <points> [move]
func parseUnitLine(fields []string) (*pendingUnit, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("unit: expected \"unit <name> <faction> <points> [move]\", got %q", strings.Join(fields, " "))
	}
	points, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("unit: bad points %q: %w", fields[3], err)
	}
	u := &pendingUnit{name: fields[1], faction: fields[2], points: points}
	if len(fields) >= 5 {
		move, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("unit: bad move %q: %w", fields[4], err)
		}
		u.move = move
	}
	return u, nil
}

// parseModelLine: model <name> <q> <d> <tough> <count>
func parseModelLine(fields []string) (pendingModel, error) {
	if len(fields) != 6 {
		return pendingModel{}, fmt.Errorf("model: expected \"model <name> <q> <d> <tough> <count>\", got %q", strings.Join(fields, " "))
	}
	ints, err := atoiAll(fields[2:6])
	if err != nil {
		return pendingModel{}, fmt.Errorf("model: %w", err)
	}
	return pendingModel{name: fields[1], q: ints[0], d: ints[1], tough: ints[2], n: ints[3]}, nil
}

// parseWeaponLine: weapon <name> <attacks> <range> <ap> [rule[:value] ...]
func parseWeaponLine(fields []string) (model.Weapon, error) {
	if len(fields) < 5 {
		return model.Weapon{}, fmt.Errorf("weapon: expected \"weapon <name> <attacks> <range> <ap> [rules...]\", got %q", strings.Join(fields, " "))
	}
	ints, err := atoiAll(fields[2:5])
	if err != nil {
		return model.Weapon{}, fmt.Errorf("weapon: %w", err)
	}
	w := model.Weapon{Name: fields[1], A: ints[0], R: ints[1], AP: ints[2]}
	for _, tok := range fields[5:] {
		r, err := parseRuleToken(tok)
		if err != nil {
			return model.Weapon{}, fmt.Errorf("weapon %s: %w", w.Name, err)
		}
		w.Rules = append(w.Rules, r)
	}
	if err := w.Validate(); err != nil {
		return model.Weapon{}, err
	}
	return w, nil
}

// parseRuleLine: rule <name> [value]
func parseRuleLine(fields []string) (model.Rule, error) {
	if len(fields) < 2 {
		return model.Rule{}, fmt.Errorf("rule: expected \"rule <name> [value]\", got %q", strings.Join(fields, " "))
	}
	tok := fields[1]
	if len(fields) >= 3 {
		tok = fields[1] + ":" + fields[2]
	}
	return parseRuleToken(tok)
}

func parseRuleToken(tok string) (model.Rule, error) {
	name, valueStr, hasValue := strings.Cut(tok, ":")
	tag, ok := ruleNames[name]
	if !ok {
		return model.Rule{}, fmt.Errorf("unknown rule %q", name)
	}
	r := model.Rule{Tag: tag}
	if hasValue {
		v, err := strconv.Atoi(valueStr)
		if err != nil {
			return model.Rule{}, fmt.Errorf("rule %q: bad value %q: %w", name, valueStr, err)
		}
		r.Value = v
	}
	return r, nil
}

func atoiAll(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad integer %q: %w", f, err)
		}
		out[i] = v
	}
	return out, nil
}
