// Package stats derives a card's effective combat stats from its
// template base stats, the rarity multiplier tables and the owner's
// level. All functions are pure; malformed template data surfaces as a
// data-integrity error for the operator, never a retry.
package stats

import (
	"fmt"
	"math"

	"github.com/YourStyle/moodsprint/internal/game"
)

// LevelStatMultiplier is the per-level stat growth factor:
// level multiplier = 1 + level * LevelStatMultiplier.
const LevelStatMultiplier = 0.05

// RarityTable maps each rarity tier to its HP and attack multipliers.
// Tables come from the server config and must be monotonically
// increasing with the tier (validated at load).
type RarityTable struct {
	HP     map[game.Rarity]float64
	Attack map[game.Rarity]float64
}

// LevelMultiplier returns 1 + level*LevelStatMultiplier. Negative levels
// are treated as zero.
func LevelMultiplier(level int) float64 {
	if level < 0 {
		level = 0
	}
	return 1 + float64(level)*LevelStatMultiplier
}

// Effective computes floor(base * rarityMult * levelMult).
func Effective(base int, rarityMult, levelMult float64) int {
	return int(math.Floor(float64(base) * rarityMult * levelMult))
}

// CardStats is the derived (MaxHP, Attack) pair for a card.
type CardStats struct {
	MaxHitPoints int
	Attack       int
}

// Compute derives a card's stats from template base stats, rarity and
// the combined card+owner level used for scaling.
func (t *RarityTable) Compute(tpl *game.CardTemplate, rarity game.Rarity, level int) (CardStats, error) {
	hpMult, ok := t.HP[rarity]
	if !ok {
		return CardStats{}, fmt.Errorf("no HP multiplier configured for rarity %q", rarity)
	}
	atkMult, ok := t.Attack[rarity]
	if !ok {
		return CardStats{}, fmt.Errorf("no attack multiplier configured for rarity %q", rarity)
	}
	if tpl.BaseHitPoints <= 0 || tpl.BaseAttack <= 0 {
		return CardStats{}, fmt.Errorf("template %q has non-positive base stats (hp=%d atk=%d)", tpl.Name, tpl.BaseHitPoints, tpl.BaseAttack)
	}
	lm := LevelMultiplier(level)
	return CardStats{
		MaxHitPoints: Effective(tpl.BaseHitPoints, hpMult, lm),
		Attack:       Effective(tpl.BaseAttack, atkMult, lm),
	}, nil
}

// Rescale recomputes a live card's stats under a new multiplier table.
// The old table is divided out first to recover the base values, then
// the new multipliers are applied, so repeated migrations never
// compound. CurrentHitPoints is carried over proportionally
// (new_current = new_max * old_current/old_max), never clamped, to
// preserve the card's relative damage state. An old max of zero is
// treated as full HP.
func Rescale(card *game.UserCard, old, new_ *RarityTable, level int) error {
	oldHP, ok := old.HP[card.Rarity]
	if !ok || oldHP == 0 {
		return fmt.Errorf("old table missing HP multiplier for rarity %q", card.Rarity)
	}
	oldAtk, ok := old.Attack[card.Rarity]
	if !ok || oldAtk == 0 {
		return fmt.Errorf("old table missing attack multiplier for rarity %q", card.Rarity)
	}
	newHP, ok := new_.HP[card.Rarity]
	if !ok {
		return fmt.Errorf("new table missing HP multiplier for rarity %q", card.Rarity)
	}
	newAtk, ok := new_.Attack[card.Rarity]
	if !ok {
		return fmt.Errorf("new table missing attack multiplier for rarity %q", card.Rarity)
	}

	lm := LevelMultiplier(level)

	// Recover bases by dividing out the old rarity multiplier and level
	// factor, then reapply base × new multipliers.
	baseHP := float64(card.MaxHitPoints) / (oldHP * lm)
	baseAtk := float64(card.Attack) / (oldAtk * lm)

	oldMax := card.MaxHitPoints
	oldCurrent := card.CurrentHitPoints

	card.MaxHitPoints = int(math.Floor(baseHP * newHP * lm))
	card.Attack = int(math.Floor(baseAtk * newAtk * lm))

	if oldMax == 0 {
		card.CurrentHitPoints = card.MaxHitPoints
		return nil
	}
	frac := float64(oldCurrent) / float64(oldMax)
	card.CurrentHitPoints = int(math.Round(float64(card.MaxHitPoints) * frac))
	if card.CurrentHitPoints > card.MaxHitPoints {
		card.CurrentHitPoints = card.MaxHitPoints
	}
	if card.CurrentHitPoints < 0 {
		card.CurrentHitPoints = 0
	}
	return nil
}
