package storage

import (
	"time"

	"github.com/YourStyle/moodsprint/internal/game"
)

type Repository interface {
	// Profiles
	UpsertProfile(email, name string) (*game.UserProfile, error)
	GetProfileByEmail(email string) (*game.UserProfile, error)
	GetProfileByID(id uint) (*game.UserProfile, error)
	SaveProfile(p *game.UserProfile) error
	// FindProfilesDueEnergyRegen returns profiles below their energy cap
	// whose last regen timestamp is at least one interval in the past.
	// The background regen scanner consumes this.
	FindProfilesDueEnergyRegen(now time.Time, interval time.Duration) ([]game.UserProfile, error)
	// GetTopProfiles returns the leaderboard ordered by level then XP.
	GetTopProfiles(limit int) ([]game.UserProfile, error)

	// Card templates (stats come from config; see configByName override)
	GetTemplates() ([]game.CardTemplate, error)
	GetTemplateByName(name string) (*game.CardTemplate, error)
	SaveTemplateImage(templateID uint, pngBytes []byte) error
	GetTemplateImage(templateID uint) ([]byte, error)

	// User cards
	CreateCard(c *game.UserCard) error
	SaveCard(c *game.UserCard) error
	GetCardsByUser(userID uint) ([]game.UserCard, error)
	GetDeckCards(userID uint) ([]game.UserCard, error)
	GetCardsByIDs(ids []uint) ([]game.UserCard, error)
	// GetLiveCards returns all non-destroyed cards; the startup stat
	// rescale pass iterates them.
	GetLiveCards() ([]game.UserCard, error)

	// Monsters
	GetMonsters() ([]game.Monster, error)
	GetMonsterByName(name string) (*game.Monster, error)

	// Battles. CreateBattle relies on the unique partial index over
	// (user_id, status='active') so two concurrent starts cannot both
	// insert; callers still check FindActiveBattleByUser first for a
	// typed conflict error.
	CreateBattle(b *game.Battle) error
	FindActiveBattleByUser(userID uint) (*game.Battle, error)
	GetBattleByPublicID(publicID string) (*game.Battle, error)
	UpdateBattle(b *game.Battle) error

	// Level rewards and the grant log
	GetActiveLevelRewards() ([]game.LevelReward, error)
	GetGrantedRewardIDs(userID uint) (map[uint]bool, error)
	CreateRewardGrant(g *game.RewardGrant) error

	// Persisted server settings
	GetConfigState(key string) (string, error)
	SaveConfigState(key, value string) error

	// Transaction runs fn against a repository bound to a single DB
	// transaction; any error rolls the whole unit back.
	Transaction(fn func(Repository) error) error
}
