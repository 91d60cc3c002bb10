// Package energy implements the campaign energy gate: a capped per-user
// resource consumed on battle entry and regenerated over time. All
// functions mutate the profile in memory only; persistence and locking
// belong to the service layer.
package energy

import (
	"time"

	"github.com/YourStyle/moodsprint/internal/apperr"
	"github.com/YourStyle/moodsprint/internal/game"
)

// BaseMaxEnergy is the cap every new profile starts with.
const BaseMaxEnergy = 5

// AutoIncreaseEveryLevels grants one extra max energy automatically for
// every N user levels, independent of configured level rewards.
const AutoIncreaseEveryLevels = 3

// Spend consumes one energy point. Fails with an insufficient-resource
// error when the pool is empty.
func Spend(p *game.UserProfile) error {
	if p.CampaignEnergy <= 0 {
		return apperr.Insufficient("not enough energy")
	}
	p.CampaignEnergy--
	return nil
}

// Add credits energy, capped at the current maximum.
func Add(p *game.UserProfile, amount int) {
	if amount <= 0 {
		return
	}
	p.CampaignEnergy += amount
	if p.CampaignEnergy > p.MaxCampaignEnergy {
		p.CampaignEnergy = p.MaxCampaignEnergy
	}
}

// IncreaseMax raises the cap and refills the pool to the new cap. Cap
// increases always grant a full refill: the level-up moment is rewarded
// with a fresh pool.
func IncreaseMax(p *game.UserProfile, amount int) {
	if amount <= 0 {
		return
	}
	p.MaxCampaignEnergy += amount
	p.CampaignEnergy = p.MaxCampaignEnergy
}

// Regen credits one point per elapsed interval since LastEnergyRegenAt,
// capped at the maximum, and advances the timestamp by the whole
// intervals consumed (so partial progress toward the next point is
// preserved). Returns the number of points credited.
func Regen(p *game.UserProfile, now time.Time, interval time.Duration) int {
	if interval <= 0 || p.LastEnergyRegenAt.IsZero() {
		p.LastEnergyRegenAt = now
		return 0
	}
	elapsed := now.Sub(p.LastEnergyRegenAt)
	if elapsed < interval {
		return 0
	}
	points := int(elapsed / interval)
	room := p.MaxCampaignEnergy - p.CampaignEnergy
	if room <= 0 {
		// Full pool: drop accrued progress so a full user does not bank
		// points for later.
		p.LastEnergyRegenAt = now
		return 0
	}
	credited := points
	if credited > room {
		credited = room
	}
	p.CampaignEnergy += credited
	p.LastEnergyRegenAt = p.LastEnergyRegenAt.Add(time.Duration(points) * interval)
	return credited
}

// ExpectedMax computes the cap a user at the given level is entitled to:
// base + one automatic point every AutoIncreaseEveryLevels levels + the
// sum of configured max_energy reward amounts for levels in [2, level].
func ExpectedMax(level int, configuredBonus int) int {
	if level < 0 {
		level = 0
	}
	return BaseMaxEnergy + level/AutoIncreaseEveryLevels + configuredBonus
}
