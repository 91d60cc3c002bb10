package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/YourStyle/moodsprint/internal/game"
	"github.com/YourStyle/moodsprint/internal/rewards"
)

const validConfig = `{
  "server": { "address": ":9090" },
  "energy": { "regen_minutes": 15 },
  "rarity_multipliers": {
    "hp":     { "common": 1.0, "uncommon": 1.15, "rare": 1.35, "epic": 1.6, "legendary": 2.0 },
    "attack": { "common": 1.0, "uncommon": 1.1,  "rare": 1.25, "epic": 1.5, "legendary": 1.9 }
  },
  "card_templates": [
    { "name": "Ember Fox", "base_hp": 40, "base_attack": 12, "rarity": "common", "unlock_level": 1 }
  ],
  "monsters": [
    {
      "name": "Imp", "hp": 80, "attack": 10, "difficulty": "common",
      "energy_cost": 1, "sparks_reward": 25, "card_xp_reward": 40,
      "stars": { "conditions": [ { "kind": "rounds_max", "threshold": 5, "stars": 1 } ] }
    }
  ],
  "level_rewards": [
    { "level": 2, "reward_type": "sparks", "reward_value": { "amount": 50 } }
  ],
  "streak_milestones": [
    { "days": 3, "xp": 50 },
    { "days": 7, "xp": 150, "card_rarity": "common" }
  ],
  "streak_policy": "grant-all-skipped"
}`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moodsprint_config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerAddress != ":9090" {
		t.Fatalf("expected address :9090, got %s", cfg.ServerAddress)
	}
	if cfg.EnergyRegenInterval != 15*time.Minute {
		t.Fatalf("expected 15m regen, got %v", cfg.EnergyRegenInterval)
	}
	if cfg.StreakPolicy != rewards.GrantAllSkipped {
		t.Fatalf("expected grant-all-skipped policy, got %s", cfg.StreakPolicy)
	}
	if len(cfg.CardTemplates) != 1 || cfg.CardTemplates[0].Rarity != game.RarityCommon {
		t.Fatalf("templates not loaded: %+v", cfg.CardTemplates)
	}
	if len(cfg.LevelRewards) != 1 || !cfg.LevelRewards[0].Active {
		t.Fatalf("level rewards not loaded: %+v", cfg.LevelRewards)
	}

	// Star template defaults fill in when omitted.
	m := cfg.Monsters[0]
	if m.Stars.Base != 1 || m.Stars.Max != 3 {
		t.Fatalf("expected star defaults base=1 max=3, got %+v", m.Stars)
	}
	if m.EnergyCost != 1 {
		t.Fatalf("expected energy cost 1, got %d", m.EnergyCost)
	}
}

func TestLoadConfig_WorkerDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkerCount != 2 || cfg.WorkerRetries != 3 {
		t.Fatalf("unexpected worker defaults: %+v", cfg)
	}
	if cfg.WorkerRetryDelay != 2*time.Second || cfg.WorkerHardTimeout != 90*time.Second {
		t.Fatalf("unexpected worker timing defaults: %+v", cfg)
	}
}

func TestLoadConfig_RejectsNonMonotonicMultipliers(t *testing.T) {
	body := `{
  "rarity_multipliers": {
    "hp":     { "common": 1.0, "uncommon": 0.9, "rare": 1.35, "epic": 1.6, "legendary": 2.0 },
    "attack": { "common": 1.0, "uncommon": 1.1, "rare": 1.25, "epic": 1.5, "legendary": 1.9 }
  },
  "card_templates": [ { "name": "X", "base_hp": 10, "base_attack": 10, "rarity": "common" } ],
  "monsters": [ { "name": "M", "hp": 10, "attack": 10 } ]
}`
	if _, err := LoadConfig(writeConfig(t, body)); err == nil {
		t.Fatalf("expected error for non-monotonic multipliers")
	}
}

func TestLoadConfig_RejectsDuplicateTemplateNames(t *testing.T) {
	body := `{
  "rarity_multipliers": {
    "hp":     { "common": 1.0, "uncommon": 1.15, "rare": 1.35, "epic": 1.6, "legendary": 2.0 },
    "attack": { "common": 1.0, "uncommon": 1.1,  "rare": 1.25, "epic": 1.5, "legendary": 1.9 }
  },
  "card_templates": [
    { "name": "X", "base_hp": 10, "base_attack": 10, "rarity": "common" },
    { "name": "x", "base_hp": 20, "base_attack": 20, "rarity": "rare" }
  ],
  "monsters": [ { "name": "M", "hp": 10, "attack": 10 } ]
}`
	if _, err := LoadConfig(writeConfig(t, body)); err == nil {
		t.Fatalf("expected error for duplicate template names")
	}
}

func TestLoadConfig_RejectsUnknownSpecialTag(t *testing.T) {
	body := `{
  "rarity_multipliers": {
    "hp":     { "common": 1.0, "uncommon": 1.15, "rare": 1.35, "epic": 1.6, "legendary": 2.0 },
    "attack": { "common": 1.0, "uncommon": 1.1,  "rare": 1.25, "epic": 1.5, "legendary": 1.9 }
  },
  "card_templates": [ { "name": "X", "base_hp": 10, "base_attack": 10, "rarity": "common" } ],
  "monsters": [ { "name": "M", "hp": 10, "attack": 10, "special_tag": "fireball" } ]
}`
	if _, err := LoadConfig(writeConfig(t, body)); err == nil {
		t.Fatalf("expected error for unknown special tag")
	}
}

func TestLoadConfig_RejectsMalformedRewardValue(t *testing.T) {
	body := `{
  "rarity_multipliers": {
    "hp":     { "common": 1.0, "uncommon": 1.15, "rare": 1.35, "epic": 1.6, "legendary": 2.0 },
    "attack": { "common": 1.0, "uncommon": 1.1,  "rare": 1.25, "epic": 1.5, "legendary": 1.9 }
  },
  "card_templates": [ { "name": "X", "base_hp": 10, "base_attack": 10, "rarity": "common" } ],
  "monsters": [ { "name": "M", "hp": 10, "attack": 10 } ],
  "level_rewards": [ { "level": 2, "reward_type": "card", "reward_value": { "rarity": "mythic" } } ]
}`
	if _, err := LoadConfig(writeConfig(t, body)); err == nil {
		t.Fatalf("expected error for malformed reward value")
	}
}

func TestLoadConfig_MissingFileFails(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
