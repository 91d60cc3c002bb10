package service

import (
	"fmt"
	"math/rand"

	"github.com/YourStyle/moodsprint/internal/apperr"
	"github.com/YourStyle/moodsprint/internal/constants"
	"github.com/YourStyle/moodsprint/internal/game"
	"github.com/YourStyle/moodsprint/internal/logging"
	"github.com/YourStyle/moodsprint/internal/rewards"
	"github.com/YourStyle/moodsprint/internal/storage"

	"github.com/google/uuid"
)

// GrantedReward describes one reward applied by a reconciliation call.
type GrantedReward struct {
	Level      int             `json:"level"`
	RewardType game.RewardType `json:"reward_type"`
	Detail     string          `json:"detail,omitempty"`
}

// AddXP credits progression XP (scaled by any active XP boost) and
// levels the user up through every threshold crossed. Each level gained
// triggers level-reward reconciliation; a reconciliation failure is
// logged but never blocks the XP credit itself.
func (s *Service) AddXP(email string, amount int64) (*game.UserProfile, []GrantedReward, error) {
	if amount <= 0 {
		return nil, nil, apperr.Validation("xp amount must be positive")
	}
	p, unlock, err := s.lockProfile(email)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	if p.XPBoostPercent > 0 {
		amount += amount * int64(p.XPBoostPercent) / 100
	}
	p.XP += amount
	leveled := false
	for p.XP >= levelXPNeeded(p.Level) {
		p.XP -= levelXPNeeded(p.Level)
		p.Level++
		leveled = true
	}
	if err := s.repo.SaveProfile(p); err != nil {
		return nil, nil, apperr.Internal("failed to save profile", err)
	}

	var granted []GrantedReward
	if leveled {
		granted, err = s.grantLevelRewardsLocked(p)
		if err != nil {
			logging.Error("level reward reconciliation failed", err, logging.Fields{constants.LogFieldUserID: p.ID, constants.LogFieldLevel: p.Level})
		}
	}
	return p, granted, nil
}

// levelXPNeeded is the XP required to leave the given user level.
func levelXPNeeded(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(level) * 100
}

// GrantLevelRewards reconciles a user's rewards against their current
// level: every active configured reward at or below the level that is
// not yet in the grant log is applied, and the energy-limit watermark
// is brought up to the level. Safe to call repeatedly: the second call
// in a row returns no grants.
func (s *Service) GrantLevelRewards(email string) (*game.UserProfile, []GrantedReward, error) {
	p, unlock, err := s.lockProfile(email)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	granted, err := s.grantLevelRewardsLocked(p)
	if err != nil {
		return nil, nil, err
	}
	return p, granted, nil
}

// grantLevelRewardsLocked does the actual reconciliation. Caller holds
// the user lock. Grant-log rows, profile mutations and card mints
// commit in one transaction, so a crash can never apply a reward
// without recording it (or vice versa).
func (s *Service) grantLevelRewardsLocked(p *game.UserProfile) ([]GrantedReward, error) {
	all, err := s.repo.GetActiveLevelRewards()
	if err != nil {
		return nil, apperr.Internal("failed to load level rewards", err)
	}
	grantedIDs, err := s.repo.GetGrantedRewardIDs(p.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load grant log", err)
	}

	pending := rewards.Pending(all, grantedIDs, p.Level)
	energyChanged := rewards.ReconcileEnergyLimit(p, all)

	out := make([]GrantedReward, 0, len(pending)+1)
	var minted []*game.UserCard

	err = s.repo.Transaction(func(tx storage.Repository) error {
		for _, r := range pending {
			v, err := rewards.ParseRewardValue(r.RewardType, r.RewardValue)
			if err != nil {
				// Malformed configuration: surface to the operator via
				// logs, skip the row, keep reconciling the rest.
				logging.Error("malformed level reward", err, logging.Fields{"level_reward_id": r.ID, constants.LogFieldLevel: r.Level})
				continue
			}
			detail := ""
			if r.RewardType == game.RewardCard {
				card, err := s.mintCard(tx, p, v.Rarity)
				if err != nil {
					return err
				}
				minted = append(minted, card)
				detail = card.Name
			} else {
				rewards.ApplyToProfile(p, r.RewardType, v)
			}
			if err := tx.CreateRewardGrant(&game.RewardGrant{
				UserID:        p.ID,
				LevelRewardID: r.ID,
				Level:         r.Level,
				GrantKey:      uuid.NewString(),
			}); err != nil {
				return err
			}
			out = append(out, GrantedReward{Level: r.Level, RewardType: r.RewardType, Detail: detail})
		}
		return tx.SaveProfile(p)
	})
	if err != nil {
		return nil, apperr.Internal("failed to persist grants", err)
	}

	for _, c := range minted {
		s.ensureArt(c.TemplateID, c.Name, c.Rarity)
	}
	if len(out) > 0 || energyChanged {
		s.notify(p, fmt.Sprintf("Level %d rewards are in: %d new reward(s).", p.Level, len(out)))
	}
	return out, nil
}

// CheckStreakMilestone grants the streak milestone(s) a user's current
// streak entitles them to, per the configured policy
// (grant-highest-only forfeits skipped lower thresholds;
// grant-all-skipped back-grants them). The watermark advances in the
// same transaction as the grant. A repeat call before the streak grows
// is a no-op.
func (s *Service) CheckStreakMilestone(email string) (*game.UserProfile, []GrantedReward, error) {
	p, unlock, err := s.lockProfile(email)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	due := s.opts.StreakMilestones.Eligible(p.StreakDays, p.LastStreakMilestoneClaimed, s.opts.StreakPolicy)
	if len(due) == 0 {
		return p, nil, nil
	}

	out := make([]GrantedReward, 0, len(due))
	var minted []*game.UserCard
	err = s.repo.Transaction(func(tx storage.Repository) error {
		for _, m := range due {
			p.XP += m.XP
			detail := ""
			if m.CardRarity != "" {
				card, err := s.mintCard(tx, p, m.CardRarity)
				if err != nil {
					return err
				}
				minted = append(minted, card)
				detail = card.Name
			}
			p.LastStreakMilestoneClaimed = m.Days
			out = append(out, GrantedReward{Level: m.Days, RewardType: "streak_milestone", Detail: detail})
		}
		return tx.SaveProfile(p)
	})
	if err != nil {
		return nil, nil, apperr.Internal("failed to persist streak milestone", err)
	}

	for _, c := range minted {
		s.ensureArt(c.TemplateID, c.Name, c.Rarity)
	}
	s.notify(p, fmt.Sprintf("Streak milestone reached: day %d!", p.LastStreakMilestoneClaimed))
	logging.Info("streak milestone granted", logging.Fields{constants.LogFieldUserID: p.ID, "milestone_days": p.LastStreakMilestoneClaimed})
	return p, out, nil
}

// mintCard creates a UserCard of the requested rarity from a random
// unlocked template, stats derived from the rarity table at the owner's
// level. The image stays pending until the async art pipeline fills in
// the template's PNG.
func (s *Service) mintCard(tx storage.Repository, p *game.UserProfile, rarity game.Rarity) (*game.UserCard, error) {
	templates, err := tx.GetTemplates()
	if err != nil {
		return nil, err
	}
	eligible := make([]game.CardTemplate, 0, len(templates))
	for _, t := range templates {
		if t.Rarity == rarity && t.UnlockLevel <= p.Level {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("no unlocked card template of rarity %q for level %d", rarity, p.Level)
	}
	tpl := eligible[rand.Intn(len(eligible))]

	level := p.Level
	if level < 1 {
		level = 1
	}
	cs, err := s.opts.RarityTable.Compute(&tpl, rarity, level)
	if err != nil {
		return nil, err
	}
	card := &game.UserCard{
		UserID:           p.ID,
		TemplateID:       tpl.ID,
		Name:             tpl.Name,
		Rarity:           rarity,
		Level:            level,
		MaxHitPoints:     cs.MaxHitPoints,
		CurrentHitPoints: cs.MaxHitPoints,
		Attack:           cs.Attack,
		InDeck:           true,
		Tradeable:        true,
	}
	if err := tx.CreateCard(card); err != nil {
		return nil, err
	}
	return card, nil
}
