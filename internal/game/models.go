package game

import (
	"time"

	"gorm.io/gorm"
)

// Rarity is the ordinal tier of a card. The tier controls which stat
// multipliers apply; multipliers come from the server config and are
// monotonically increasing with the tier.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// RarityOrder returns the numeric position of a rarity tier (common=0).
// Unknown rarities return -1 so callers can reject malformed data.
func RarityOrder(r Rarity) int {
	switch r {
	case RarityCommon:
		return 0
	case RarityUncommon:
		return 1
	case RarityRare:
		return 2
	case RarityEpic:
		return 3
	case RarityLegendary:
		return 4
	}
	return -1
}

// CardTemplate is the immutable design-time definition of a card. Base
// stats and unlock level are configured via the server config file
// (moodsprint_config.json) and are NOT persisted; mark them with
// `gorm:"-"` so GORM ignores them for schema purposes while keeping the
// fields available in-memory and in JSON responses.
type CardTemplate struct {
	gorm.Model
	Name          string `json:"name" gorm:"uniqueIndex"`
	BaseHitPoints int    `json:"base_hp" gorm:"-"`
	BaseAttack    int    `json:"base_attack" gorm:"-"`
	Rarity        Rarity `json:"rarity" gorm:"-"`
	UnlockLevel   int    `json:"unlock_level" gorm:"-"`
	ArchetypeTier int    `json:"archetype_tier" gorm:"-"`
	// ImagePNG stores the 256x256 PNG bytes for this template's card art.
	// Generated asynchronously; empty until the worker fills it in.
	ImagePNG []byte `json:"-" gorm:"column:image_png;type:blob"`
}

func (CardTemplate) TableName() string { return "card_templates" }

// UserCard is an owned card instance. Stats are denormalized from the
// template at mint time and recomputed on card level-up or stat rescale.
// CurrentHitPoints is battle-scoped: it resets to MaxHitPoints outside of
// battle. Destroyed cards are excluded from all selection pools but kept
// for history.
type UserCard struct {
	gorm.Model
	UserID           uint   `json:"-" gorm:"index"`
	TemplateID       uint   `json:"template_id"`
	Name             string `json:"name"`
	Rarity           Rarity `json:"rarity"`
	Level            int    `json:"level"`
	XP               int64  `json:"xp"`
	MaxHitPoints     int    `json:"max_hp"`
	CurrentHitPoints int    `json:"current_hp"`
	Attack           int    `json:"attack"`
	InDeck           bool   `json:"in_deck"`
	Companion        bool   `json:"companion"`
	Showcase         bool   `json:"showcase"`
	Destroyed        bool   `json:"destroyed"`
	Tradeable        bool   `json:"tradeable"`
}

func (UserCard) TableName() string { return "user_cards" }

// Usable reports whether a card may participate in a battle deck.
func (c *UserCard) Usable() bool {
	return !c.Destroyed && c.MaxHitPoints > 0
}

// Monster is an opponent definition. Stats come from the server config
// (single source of truth); only the name is persisted so battles can
// reference a stable row.
type Monster struct {
	gorm.Model
	Name          string         `json:"name" gorm:"uniqueIndex"`
	HitPoints     int            `json:"hp" gorm:"-"`
	Attack        int            `json:"attack" gorm:"-"`
	SpecialTag    string         `json:"special_tag" gorm:"-"`
	Difficulty    Rarity         `json:"difficulty" gorm:"-"`
	EnergyCost    int            `json:"energy_cost" gorm:"-"`
	SparksReward  int64          `json:"sparks_reward" gorm:"-"`
	CardXPReward  int64          `json:"card_xp_reward" gorm:"-"`
	Stars         StarTemplate   `json:"stars" gorm:"-"`
}

func (Monster) TableName() string { return "monsters" }

// Monster special ability tags recognized by the battle engine.
const (
	SpecialEnrage    = "enrage"     // +50% attack while below half HP
	SpecialThickHide = "thick_hide" // incoming damage reduced 25% (min 1)
)

// StarCondition is a configurable bonus objective evaluated on a battle
// win. Each condition is evaluated independently and its stars are added
// to the base stars, capped at the template's maximum.
type StarCondition struct {
	Kind      StarConditionKind `json:"kind"`
	Threshold float64           `json:"threshold"`
	Stars     int               `json:"stars"`
}

type StarConditionKind string

const (
	StarRoundsMax       StarConditionKind = "rounds_max"
	StarCardsLostMax    StarConditionKind = "cards_lost_max"
	StarHPRemainingMin  StarConditionKind = "hp_remaining_min"
)

// StarTemplate groups the base star award, bonus conditions and the cap.
type StarTemplate struct {
	Base       int             `json:"base"`
	Conditions []StarCondition `json:"conditions"`
	Max        int             `json:"max"`
}

// BattleStatus is the lifecycle state of a battle. `won`, `lost` and
// `abandoned` are terminal; no transition leaves a terminal state.
type BattleStatus string

const (
	BattleActive    BattleStatus = "active"
	BattleWon       BattleStatus = "won"
	BattleLost      BattleStatus = "lost"
	BattleAbandoned BattleStatus = "abandoned"
)

// Terminal reports whether the status admits no further transitions.
func (s BattleStatus) Terminal() bool {
	return s == BattleWon || s == BattleLost || s == BattleAbandoned
}

// Battle is a persisted player-vs-monster encounter. The combat state
// lives in the State document (serialized JSON in the `state` column);
// the row carries only the fields needed for lookups and the
// single-active-battle constraint.
type Battle struct {
	gorm.Model
	PublicID     string       `json:"battle_id" gorm:"uniqueIndex"`
	UserID       uint         `json:"-" gorm:"index"`
	MonsterName  string       `json:"monster_name"`
	Status       BattleStatus `json:"status"`
	CurrentRound int          `json:"current_round"`
	StateJSON    []byte       `json:"-" gorm:"column:state;type:blob"`

	// State is the decoded battle document. Loaded/saved by the
	// repository; not a column of its own.
	State *BattleState `json:"state" gorm:"-"`
}

func (Battle) TableName() string { return "battles" }

// RewardType identifies the effect of a configured level reward.
type RewardType string

const (
	RewardSparks        RewardType = "sparks"
	RewardCard          RewardType = "card"
	RewardGenreUnlock   RewardType = "genre_unlock"
	RewardMaxEnergy     RewardType = "max_energy"
	RewardXPBoost       RewardType = "xp_boost"
	RewardArchetypeTier RewardType = "archetype_tier"
)

// LevelReward is a configuration entity: a reward owed to every user who
// reaches Level. Multiple rows may share a level. RewardValue holds the
// type-specific parameters as a JSON object (amount, rarity, genre, ...).
type LevelReward struct {
	gorm.Model
	Level       int        `json:"level" gorm:"index"`
	RewardType  RewardType `json:"reward_type"`
	RewardValue string     `json:"reward_value"`
	Active      bool       `json:"active"`
}

func (LevelReward) TableName() string { return "level_rewards" }

// RewardGrant is the idempotency log for level rewards: one row per
// (user, level reward) pair, enforced by a unique index. The energy-limit
// and streak reconciliations use watermarks on the profile instead (see
// UserProfile); everything else goes through this log so grants are
// auditable and replay-safe.
type RewardGrant struct {
	gorm.Model
	UserID        uint   `json:"-" gorm:"uniqueIndex:idx_reward_grants_user_reward"`
	LevelRewardID uint   `json:"level_reward_id" gorm:"uniqueIndex:idx_reward_grants_user_reward"`
	Level         int    `json:"level"`
	GrantKey      string `json:"grant_key"`
}

func (RewardGrant) TableName() string { return "reward_grants" }

// UserProfile stores identity, progression and the campaign energy pool.
//
// Invariants maintained by the service layer:
//   - 0 <= CampaignEnergy <= MaxCampaignEnergy
//   - MaxCampaignEnergy never decreases
//   - EnergyLimitUpdatedToLevel never decreases and never exceeds Level
type UserProfile struct {
	gorm.Model
	Email string `json:"email" gorm:"uniqueIndex"`
	Name  string `json:"name"`

	Level  int   `json:"level"`
	XP     int64 `json:"xp"`
	Sparks int64 `json:"sparks"`

	StreakDays                 int `json:"streak_days"`
	LastStreakMilestoneClaimed int `json:"last_streak_milestone_claimed"`

	CampaignEnergy            int       `json:"campaign_energy"`
	MaxCampaignEnergy         int       `json:"max_campaign_energy"`
	EnergyLimitUpdatedToLevel int       `json:"energy_limit_updated_to_level"`
	LastEnergyRegenAt         time.Time `json:"last_energy_regen_at"`

	UnlockedGenres string `json:"unlocked_genres"` // comma-separated set
	XPBoostPercent int    `json:"xp_boost_percent"`
	ArchetypeTier  int    `json:"archetype_tier"`

	// Telegram chat for fire-and-forget reward notifications; 0 = none.
	TelegramChatID int64 `json:"-"`
}

func (UserProfile) TableName() string { return "user_profiles" }

// ConfigState stores small server-side settings that must survive
// restarts, keyed by name. Used to detect rarity-multiplier changes
// between the persisted cards and the loaded config so the startup
// rescale pass knows the old table to divide out.
type ConfigState struct {
	gorm.Model
	Key   string `gorm:"uniqueIndex"`
	Value string
}

func (ConfigState) TableName() string { return "config_state" }
