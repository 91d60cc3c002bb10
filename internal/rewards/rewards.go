// Package rewards implements the reconciliation engine keeping a user's
// granted rewards consistent with their current level and streak,
// including catch-up for level-ups that predate a reward's existence.
// The functions here are pure: they compute deltas and mutate profiles
// in memory. Persistence, locking and card minting live in the service
// layer.
package rewards

import (
	"encoding/json"
	"fmt"

	"github.com/YourStyle/moodsprint/internal/energy"
	"github.com/YourStyle/moodsprint/internal/game"
)

// RewardValue is the decoded union of all reward_value JSON shapes.
// Only the fields relevant to the reward's type are set.
type RewardValue struct {
	Amount  int64       `json:"amount,omitempty"`  // sparks, max_energy
	Rarity  game.Rarity `json:"rarity,omitempty"`  // card
	Genre   string      `json:"genre,omitempty"`   // genre_unlock
	Percent int         `json:"percent,omitempty"` // xp_boost
	Tier    int         `json:"tier,omitempty"`    // archetype_tier
}

// ParseRewardValue decodes and validates a level reward's parameters.
// Malformed configuration is a data-integrity error, not retried.
func ParseRewardValue(rt game.RewardType, raw string) (RewardValue, error) {
	var v RewardValue
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return v, fmt.Errorf("reward value %q: %w", raw, err)
		}
	}
	switch rt {
	case game.RewardSparks, game.RewardMaxEnergy:
		if v.Amount <= 0 {
			return v, fmt.Errorf("%s reward requires positive amount", rt)
		}
	case game.RewardCard:
		if game.RarityOrder(v.Rarity) < 0 {
			return v, fmt.Errorf("card reward has unknown rarity %q", v.Rarity)
		}
	case game.RewardGenreUnlock:
		if v.Genre == "" {
			return v, fmt.Errorf("genre_unlock reward requires genre")
		}
	case game.RewardXPBoost:
		if v.Percent <= 0 {
			return v, fmt.Errorf("xp_boost reward requires positive percent")
		}
	case game.RewardArchetypeTier:
		if v.Tier <= 0 {
			return v, fmt.Errorf("archetype_tier reward requires positive tier")
		}
	default:
		return v, fmt.Errorf("unknown reward type %q", rt)
	}
	return v, nil
}

// Pending filters the active level rewards a user is owed: level within
// reach and not yet present in the grant log. Max-energy rewards are
// excluded here; they reconcile through the watermark (see
// ReconcileEnergyLimit) rather than the grant log.
func Pending(all []game.LevelReward, granted map[uint]bool, level int) []game.LevelReward {
	out := make([]game.LevelReward, 0, len(all))
	for _, r := range all {
		if !r.Active || r.Level > level {
			continue
		}
		if r.RewardType == game.RewardMaxEnergy {
			continue
		}
		if granted[r.ID] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ApplyToProfile applies a profile-scoped reward effect. Card rewards
// are minted by the caller; max_energy goes through the watermark path.
func ApplyToProfile(p *game.UserProfile, rt game.RewardType, v RewardValue) {
	switch rt {
	case game.RewardSparks:
		p.Sparks += v.Amount
	case game.RewardGenreUnlock:
		p.UnlockedGenres = appendGenre(p.UnlockedGenres, v.Genre)
	case game.RewardXPBoost:
		if v.Percent > p.XPBoostPercent {
			p.XPBoostPercent = v.Percent
		}
	case game.RewardArchetypeTier:
		if v.Tier > p.ArchetypeTier {
			p.ArchetypeTier = v.Tier
		}
	}
}

func appendGenre(set, genre string) string {
	if set == "" {
		return genre
	}
	cur := set
	for _, g := range splitGenres(cur) {
		if g == genre {
			return set
		}
	}
	return set + "," + genre
}

func splitGenres(set string) []string {
	if set == "" {
		return nil
	}
	out := []string{}
	start := 0
	for i := 0; i <= len(set); i++ {
		if i == len(set) || set[i] == ',' {
			if i > start {
				out = append(out, set[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// ConfiguredEnergyBonus sums the max_energy reward amounts configured
// for levels in [2, level]. Rows with malformed values are skipped; the
// caller logs them as data-integrity errors.
func ConfiguredEnergyBonus(all []game.LevelReward, level int) int {
	total := 0
	for _, r := range all {
		if !r.Active || r.RewardType != game.RewardMaxEnergy {
			continue
		}
		if r.Level < 2 || r.Level > level {
			continue
		}
		v, err := ParseRewardValue(r.RewardType, r.RewardValue)
		if err != nil {
			continue
		}
		total += int(v.Amount)
	}
	return total
}

// ReconcileEnergyLimit brings a profile's max energy up to the value its
// level entitles it to and advances the watermark. Two branches:
//
//   - expected > stored: raise the cap to expected, refill to the new
//     cap, advance EnergyLimitUpdatedToLevel to the current level.
//   - expected <= stored: advance the watermark only, so the check is
//     not recomputed on every call.
//
// Returns true when the cap changed. The watermark advances in both
// branches because it tracks "reconciled up to level L" regardless of
// whether the reconciliation produced a visible change.
func ReconcileEnergyLimit(p *game.UserProfile, all []game.LevelReward) bool {
	if p.EnergyLimitUpdatedToLevel >= p.Level {
		return false
	}
	expected := energy.ExpectedMax(p.Level, ConfiguredEnergyBonus(all, p.Level))
	changed := false
	if expected > p.MaxCampaignEnergy {
		energy.IncreaseMax(p, expected-p.MaxCampaignEnergy)
		changed = true
	}
	p.EnergyLimitUpdatedToLevel = p.Level
	return changed
}
