package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/YourStyle/moodsprint/internal/game"
	"github.com/YourStyle/moodsprint/internal/rewards"
	"github.com/YourStyle/moodsprint/internal/stats"
)

type cardTemplateEntry struct {
	Name          string      `json:"name"`
	BaseHitPoints int         `json:"base_hp"`
	BaseAttack    int         `json:"base_attack"`
	Rarity        game.Rarity `json:"rarity"`
	UnlockLevel   int         `json:"unlock_level"`
	ArchetypeTier int         `json:"archetype_tier"`
}

type monsterEntry struct {
	Name         string            `json:"name"`
	HitPoints    int               `json:"hp"`
	Attack       int               `json:"attack"`
	SpecialTag   string            `json:"special_tag"`
	Difficulty   game.Rarity       `json:"difficulty"`
	EnergyCost   int               `json:"energy_cost"`
	SparksReward int64             `json:"sparks_reward"`
	CardXPReward int64             `json:"card_xp_reward"`
	Stars        game.StarTemplate `json:"stars"`
}

type levelRewardEntry struct {
	Level       int             `json:"level"`
	RewardType  game.RewardType `json:"reward_type"`
	RewardValue json.RawMessage `json:"reward_value"`
}

type rawConfig struct {
	CardTemplates []cardTemplateEntry `json:"card_templates"`
	Monsters      []monsterEntry      `json:"monsters"`
	LevelRewards  []levelRewardEntry  `json:"level_rewards"`

	RarityMultipliers struct {
		HP     map[game.Rarity]float64 `json:"hp"`
		Attack map[game.Rarity]float64 `json:"attack"`
	} `json:"rarity_multipliers"`

	StreakMilestones rewards.MilestoneTable `json:"streak_milestones"`
	StreakPolicy     string                 `json:"streak_policy"`

	Energy *struct {
		RegenMinutes int `json:"regen_minutes"`
	} `json:"energy"`

	Worker *struct {
		Workers          int `json:"workers"`
		Retries          int `json:"retries"`
		RetryDelaySecs   int `json:"retry_delay_seconds"`
		SoftTimeoutSecs  int `json:"soft_timeout_seconds"`
		HardTimeoutSecs  int `json:"hard_timeout_seconds"`
	} `json:"worker"`

	Server *struct {
		Address string `json:"address"`
	} `json:"server"`

	// Optional image prompt template used to generate card art. Use the
	// token {{card}} where the card name will be substituted.
	CardImagePrompt string `json:"card_image_prompt"`
}

// LoadedConfig is the immutable in-memory configuration built at
// startup. It is never mutated at runtime; multiplier changes take
// effect through the startup stat-rescale pass.
type LoadedConfig struct {
	CardTemplates []game.CardTemplate
	Monsters      []game.Monster
	LevelRewards  []game.LevelReward

	RarityTable      stats.RarityTable
	StreakMilestones rewards.MilestoneTable
	StreakPolicy     rewards.StreakPolicy

	EnergyRegenInterval time.Duration

	WorkerCount       int
	WorkerRetries     int
	WorkerRetryDelay  time.Duration
	WorkerSoftTimeout time.Duration
	WorkerHardTimeout time.Duration

	ServerAddress           string
	CardImagePromptTemplate string
}

var rarityOrder = []game.Rarity{game.RarityCommon, game.RarityUncommon, game.RarityRare, game.RarityEpic, game.RarityLegendary}

// LoadConfig reads the configuration file at path, validates it and
// returns the immutable config. It requires `card_templates`,
// `monsters` and complete `rarity_multipliers` tables.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if len(rc.CardTemplates) == 0 {
		return nil, fmt.Errorf("config file %s: card_templates is empty", path)
	}
	if len(rc.Monsters) == 0 {
		return nil, fmt.Errorf("config file %s: monsters is empty", path)
	}

	table, err := buildRarityTable(rc)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	templates, err := buildTemplates(rc.CardTemplates)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	monsters, err := buildMonsters(rc.Monsters)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	levelRewards := make([]game.LevelReward, 0, len(rc.LevelRewards))
	for _, e := range rc.LevelRewards {
		if e.Level < 1 {
			return nil, fmt.Errorf("config file %s: level reward with level %d (must be >= 1)", path, e.Level)
		}
		raw := string(e.RewardValue)
		if _, err := rewards.ParseRewardValue(e.RewardType, raw); err != nil {
			return nil, fmt.Errorf("config file %s: level %d reward: %w", path, e.Level, err)
		}
		levelRewards = append(levelRewards, game.LevelReward{
			Level:       e.Level,
			RewardType:  e.RewardType,
			RewardValue: raw,
			Active:      true,
		})
	}

	if err := rc.StreakMilestones.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: streak_milestones: %w", path, err)
	}
	policy := rewards.GrantHighestOnly
	switch rc.StreakPolicy {
	case "", string(rewards.GrantHighestOnly):
	case string(rewards.GrantAllSkipped):
		policy = rewards.GrantAllSkipped
	default:
		return nil, fmt.Errorf("config file %s: unknown streak_policy %q", path, rc.StreakPolicy)
	}

	cfg := &LoadedConfig{
		CardTemplates:    templates,
		Monsters:         monsters,
		LevelRewards:     levelRewards,
		RarityTable:      table,
		StreakMilestones: rc.StreakMilestones,
		StreakPolicy:     policy,

		EnergyRegenInterval: 30 * time.Minute,

		WorkerCount:       2,
		WorkerRetries:     3,
		WorkerRetryDelay:  2 * time.Second,
		WorkerSoftTimeout: 60 * time.Second,
		WorkerHardTimeout: 90 * time.Second,

		ServerAddress:           ":8080",
		CardImagePromptTemplate: strings.TrimSpace(rc.CardImagePrompt),
	}
	if rc.Energy != nil && rc.Energy.RegenMinutes > 0 {
		cfg.EnergyRegenInterval = time.Duration(rc.Energy.RegenMinutes) * time.Minute
	}
	if rc.Worker != nil {
		if rc.Worker.Workers > 0 {
			cfg.WorkerCount = rc.Worker.Workers
		}
		if rc.Worker.Retries > 0 {
			cfg.WorkerRetries = rc.Worker.Retries
		}
		if rc.Worker.RetryDelaySecs > 0 {
			cfg.WorkerRetryDelay = time.Duration(rc.Worker.RetryDelaySecs) * time.Second
		}
		if rc.Worker.SoftTimeoutSecs > 0 {
			cfg.WorkerSoftTimeout = time.Duration(rc.Worker.SoftTimeoutSecs) * time.Second
		}
		if rc.Worker.HardTimeoutSecs > 0 {
			cfg.WorkerHardTimeout = time.Duration(rc.Worker.HardTimeoutSecs) * time.Second
		}
	}
	if rc.Server != nil && rc.Server.Address != "" {
		cfg.ServerAddress = rc.Server.Address
	}
	return cfg, nil
}

func buildRarityTable(rc rawConfig) (stats.RarityTable, error) {
	t := stats.RarityTable{HP: rc.RarityMultipliers.HP, Attack: rc.RarityMultipliers.Attack}
	for _, m := range []struct {
		name string
		vals map[game.Rarity]float64
	}{{"hp", t.HP}, {"attack", t.Attack}} {
		if len(m.vals) == 0 {
			return t, fmt.Errorf("rarity_multipliers.%s is missing", m.name)
		}
		prev := 0.0
		for _, r := range rarityOrder {
			v, ok := m.vals[r]
			if !ok {
				return t, fmt.Errorf("rarity_multipliers.%s missing tier %q", m.name, r)
			}
			if v <= prev {
				return t, fmt.Errorf("rarity_multipliers.%s must increase with tier (%q = %v)", m.name, r, v)
			}
			prev = v
		}
	}
	return t, nil
}

func buildTemplates(entries []cardTemplateEntry) ([]game.CardTemplate, error) {
	nameSet := make(map[string]struct{}, len(entries))
	out := make([]game.CardTemplate, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("card template missing 'name'")
		}
		ln := strings.ToLower(strings.TrimSpace(e.Name))
		if _, exists := nameSet[ln]; exists {
			return nil, fmt.Errorf("duplicate card template name %q", e.Name)
		}
		nameSet[ln] = struct{}{}
		if game.RarityOrder(e.Rarity) < 0 {
			return nil, fmt.Errorf("card template %q: unknown rarity %q", e.Name, e.Rarity)
		}
		if e.BaseHitPoints <= 0 || e.BaseAttack <= 0 {
			return nil, fmt.Errorf("card template %q: base stats must be positive", e.Name)
		}
		out = append(out, game.CardTemplate{
			Name:          e.Name,
			BaseHitPoints: e.BaseHitPoints,
			BaseAttack:    e.BaseAttack,
			Rarity:        e.Rarity,
			UnlockLevel:   e.UnlockLevel,
			ArchetypeTier: e.ArchetypeTier,
		})
	}
	return out, nil
}

func buildMonsters(entries []monsterEntry) ([]game.Monster, error) {
	nameSet := make(map[string]struct{}, len(entries))
	out := make([]game.Monster, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("monster missing 'name'")
		}
		ln := strings.ToLower(strings.TrimSpace(e.Name))
		if _, exists := nameSet[ln]; exists {
			return nil, fmt.Errorf("duplicate monster name %q", e.Name)
		}
		nameSet[ln] = struct{}{}
		if e.HitPoints <= 0 || e.Attack <= 0 {
			return nil, fmt.Errorf("monster %q: stats must be positive", e.Name)
		}
		switch e.SpecialTag {
		case "", game.SpecialEnrage, game.SpecialThickHide:
		default:
			return nil, fmt.Errorf("monster %q: unknown special_tag %q", e.Name, e.SpecialTag)
		}
		cost := e.EnergyCost
		if cost <= 0 {
			cost = 1
		}
		st := e.Stars
		if st.Max == 0 {
			st.Max = 3
		}
		if st.Base == 0 {
			st.Base = 1
		}
		for _, c := range st.Conditions {
			switch c.Kind {
			case game.StarRoundsMax, game.StarCardsLostMax, game.StarHPRemainingMin:
			default:
				return nil, fmt.Errorf("monster %q: unknown star condition kind %q", e.Name, c.Kind)
			}
			if c.Stars <= 0 {
				return nil, fmt.Errorf("monster %q: star condition must grant positive stars", e.Name)
			}
		}
		out = append(out, game.Monster{
			Name:         e.Name,
			HitPoints:    e.HitPoints,
			Attack:       e.Attack,
			SpecialTag:   e.SpecialTag,
			Difficulty:   e.Difficulty,
			EnergyCost:   cost,
			SparksReward: e.SparksReward,
			CardXPReward: e.CardXPReward,
			Stars:        st,
		})
	}
	return out, nil
}
