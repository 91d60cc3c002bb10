package rewards

import (
	"fmt"
	"sort"

	"github.com/YourStyle/moodsprint/internal/game"
)

// Milestone is one row of the streak milestone table: reaching Days of
// streak grants XP and, optionally, a card of the given rarity.
type Milestone struct {
	Days       int         `json:"days"`
	XP         int64       `json:"xp"`
	CardRarity game.Rarity `json:"card_rarity,omitempty"`
}

// StreakPolicy decides what happens when a user's streak jumped past
// several unclaimed milestones between checks.
type StreakPolicy string

const (
	// GrantHighestOnly grants only the highest eligible milestone and
	// silently forfeits the skipped lower ones (avoids reward inflation).
	GrantHighestOnly StreakPolicy = "grant-highest-only"
	// GrantAllSkipped back-grants every skipped milestone in ascending
	// order (players keep everything they were entitled to).
	GrantAllSkipped StreakPolicy = "grant-all-skipped"
)

// MilestoneTable is an ascending-by-days milestone list.
type MilestoneTable []Milestone

// Validate checks the table is non-empty per entry and strictly
// ascending in days.
func (t MilestoneTable) Validate() error {
	for i, m := range t {
		if m.Days <= 0 {
			return fmt.Errorf("milestone %d: days must be positive", i)
		}
		if m.XP <= 0 {
			return fmt.Errorf("milestone at %d days: xp must be positive", m.Days)
		}
		if m.CardRarity != "" && game.RarityOrder(m.CardRarity) < 0 {
			return fmt.Errorf("milestone at %d days: unknown rarity %q", m.Days, m.CardRarity)
		}
		if i > 0 && t[i-1].Days >= m.Days {
			return fmt.Errorf("milestone table must be strictly ascending (%d >= %d)", t[i-1].Days, m.Days)
		}
	}
	return nil
}

// Eligible returns the milestones to grant for the given streak and
// watermark under the policy, in the order they should be applied. Empty
// when nothing is due. The caller must advance
// LastStreakMilestoneClaimed to the days of the last returned milestone
// in the same transaction as the grant.
func (t MilestoneTable) Eligible(streakDays, lastClaimed int, policy StreakPolicy) []Milestone {
	due := make([]Milestone, 0, len(t))
	for _, m := range t {
		if m.Days <= streakDays && m.Days > lastClaimed {
			due = append(due, m)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].Days < due[j].Days })
	if policy == GrantAllSkipped {
		return due
	}
	return due[len(due)-1:]
}
