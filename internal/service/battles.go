package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/YourStyle/moodsprint/internal/apperr"
	"github.com/YourStyle/moodsprint/internal/constants"
	"github.com/YourStyle/moodsprint/internal/energy"
	"github.com/YourStyle/moodsprint/internal/engine"
	"github.com/YourStyle/moodsprint/internal/game"
	"github.com/YourStyle/moodsprint/internal/logging"
	"github.com/YourStyle/moodsprint/internal/storage"

	"github.com/google/uuid"
)

// StartBattle begins a player-vs-monster battle for the given user.
// Preconditions, enforced under the user's lock:
//   - no other non-terminal battle exists (conflict),
//   - the deck has at least one usable card (validation),
//   - the energy pool covers the monster's entry cost (insufficient).
//
// On success the deck cards' current stats are snapshotted into the
// battle state (copy-on-start), round 1, status active. The profile's
// energy spend and the battle insert commit in one transaction.
func (s *Service) StartBattle(email, monsterName string) (*game.Battle, error) {
	p, unlock, err := s.lockProfile(email)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if existing, err := s.repo.FindActiveBattleByUser(p.ID); err == nil && existing != nil {
		return nil, apperr.Conflict("a battle is already in progress")
	}

	monster, err := s.repo.GetMonsterByName(monsterName)
	if err != nil {
		return nil, apperr.NotFound("monster not found")
	}

	deck, err := s.repo.GetDeckCards(p.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load deck", err)
	}
	st, err := engine.NewBattleState(deck, monster)
	if err != nil {
		return nil, err
	}

	// Credit any regen accrued since the last interaction before
	// checking the gate, so idle time counts in the user's favor.
	energy.Regen(p, time.Now(), s.opts.EnergyRegenInterval)
	if p.CampaignEnergy < monster.EnergyCost {
		return nil, apperr.Insufficient("not enough energy")
	}
	for i := 0; i < monster.EnergyCost; i++ {
		if err := energy.Spend(p); err != nil {
			return nil, err
		}
	}

	b := &game.Battle{
		PublicID:     uuid.NewString(),
		UserID:       p.ID,
		MonsterName:  monster.Name,
		Status:       game.BattleActive,
		CurrentRound: 1,
		State:        st,
	}

	err = s.repo.Transaction(func(tx storage.Repository) error {
		if err := tx.SaveProfile(p); err != nil {
			return err
		}
		return tx.CreateBattle(b)
	})
	if err != nil {
		// The partial unique index catches the losing side of a
		// concurrent start; anything else is not a duplicate battle.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, apperr.Wrap(apperr.KindConflict, "a battle is already in progress", err)
		}
		return nil, apperr.Internal("failed to persist battle", err)
	}

	logging.Info("battle started", logging.Fields{constants.LogFieldBattleID: b.PublicID, constants.LogFieldUserID: p.ID, constants.LogFieldMonster: monster.Name})
	return b, nil
}

// GetActiveBattle returns the user's current non-terminal battle.
func (s *Service) GetActiveBattle(email string) (*game.Battle, error) {
	p, err := s.profileByEmail(email)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.FindActiveBattleByUser(p.ID)
	if err != nil {
		return nil, apperr.NotFound("no active battle")
	}
	return b, nil
}

// AdvanceBattleRound resolves one round. targetID optionally names the
// monster-side participant the player's cards should focus; 0 keeps the
// default lowest-HP-first targeting. Reaching `won` resolves rewards
// exactly once, inside the same transaction that persists the terminal
// state.
func (s *Service) AdvanceBattleRound(email, battleID string, targetID int) (*game.Battle, error) {
	p, unlock, err := s.lockProfile(email)
	if err != nil {
		return nil, err
	}
	defer unlock()

	b, err := s.repo.GetBattleByPublicID(battleID)
	if err != nil || b.UserID != p.ID {
		return nil, apperr.NotFound("battle not found")
	}

	if err := engine.AdvanceRound(b, targetID); err != nil {
		return nil, err
	}

	var victoryMsg string
	err = s.repo.Transaction(func(tx storage.Repository) error {
		if b.Status == game.BattleWon {
			msg, err := s.resolveWin(tx, p, b)
			if err != nil {
				return err
			}
			victoryMsg = msg
		}
		return tx.UpdateBattle(b)
	})
	if err != nil {
		return nil, apperr.Internal("failed to persist round", err)
	}

	// Notify only once the transaction committed; a rolled-back win
	// must not produce a victory message.
	if victoryMsg != "" {
		s.notify(p, victoryMsg)
	}
	if b.Status.Terminal() {
		logging.Info("battle finished", logging.Fields{constants.LogFieldBattleID: b.PublicID, constants.LogFieldUserID: p.ID, "status": string(b.Status), "rounds": b.CurrentRound, "stars": b.State.StarsAwarded})
	}
	return b, nil
}

// AbandonBattle cancels an active battle. No rewards are granted; the
// entry energy is not refunded.
func (s *Service) AbandonBattle(email, battleID string) (*game.Battle, error) {
	p, unlock, err := s.lockProfile(email)
	if err != nil {
		return nil, err
	}
	defer unlock()

	b, err := s.repo.GetBattleByPublicID(battleID)
	if err != nil || b.UserID != p.ID {
		return nil, apperr.NotFound("battle not found")
	}
	if err := engine.Abandon(b); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBattle(b); err != nil {
		return nil, apperr.Internal("failed to persist abandon", err)
	}
	logging.Info("battle abandoned", logging.Fields{constants.LogFieldBattleID: b.PublicID, constants.LogFieldUserID: p.ID})
	return b, nil
}

// resolveWin grants the win rewards: star rating per the monster's
// configured conditions, sparks scaled by stars, and card XP to every
// surviving deck card (with level-ups recomputing stats through the
// rarity table). Guarded by the state document's RewardsGranted flag so
// rewards land at most once. Returns the victory message the caller
// sends after commit.
func (s *Service) resolveWin(tx storage.Repository, p *game.UserProfile, b *game.Battle) (string, error) {
	monster, err := tx.GetMonsterByName(b.MonsterName)
	if err != nil {
		return "", err
	}
	stars, err := engine.ResolveRewards(b, monster.Stars)
	if err != nil {
		return "", err
	}

	p.Sparks += monster.SparksReward * int64(stars)
	if err := tx.SaveProfile(p); err != nil {
		return "", err
	}

	survivors := make([]uint, 0, len(b.State.Participants))
	for _, part := range b.State.Side(game.ParticipantCard) {
		if !part.Defeated {
			survivors = append(survivors, part.CardID)
		}
	}
	if len(survivors) > 0 && monster.CardXPReward > 0 {
		cards, err := tx.GetCardsByIDs(survivors)
		if err != nil {
			return "", err
		}
		for i := range cards {
			if err := s.grantCardXP(tx, &cards[i], monster.CardXPReward); err != nil {
				return "", err
			}
		}
	}

	return fmt.Sprintf("Victory over %s! %d star(s), +%d sparks.", monster.Name, stars, monster.SparksReward*int64(stars)), nil
}

// cardXPNeeded is the XP a card must accumulate to leave the given level.
func cardXPNeeded(level int) int64 { return int64(level) * 100 }

// grantCardXP adds XP to a card and applies any level-ups, recomputing
// the card's stats from its template at the new level. CurrentHitPoints
// resets to the new max: card HP is battle-scoped and full outside one.
func (s *Service) grantCardXP(tx storage.Repository, card *game.UserCard, xp int64) error {
	card.XP += xp
	leveled := false
	for card.XP >= cardXPNeeded(card.Level) {
		card.XP -= cardXPNeeded(card.Level)
		card.Level++
		leveled = true
	}
	if leveled {
		tpl, err := tx.GetTemplateByName(card.Name)
		if err != nil {
			return err
		}
		cs, err := s.opts.RarityTable.Compute(tpl, card.Rarity, card.Level)
		if err != nil {
			return err
		}
		card.MaxHitPoints = cs.MaxHitPoints
		card.Attack = cs.Attack
	}
	card.CurrentHitPoints = card.MaxHitPoints
	return tx.SaveCard(card)
}
