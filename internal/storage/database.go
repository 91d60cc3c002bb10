package storage

import (
	"github.com/YourStyle/moodsprint/internal/game"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenAndMigrate opens (creating if needed) the SQLite database, runs
// schema migration and seeds config-driven rows (card templates,
// monsters, level rewards).
func OpenAndMigrate(dataSourceName string, templates []game.CardTemplate, monsters []game.Monster, levelRewards []game.LevelReward) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&game.CardTemplate{},
		&game.UserCard{},
		&game.Monster{},
		&game.Battle{},
		&game.LevelReward{},
		&game.RewardGrant{},
		&game.UserProfile{},
		&game.ConfigState{},
	)
	if err != nil {
		return nil, err
	}

	// Enforce the single-active-battle invariant at the storage layer: a
	// partial unique index over user_id for non-deleted rows whose
	// status is still active. Concurrent start() calls cannot both
	// insert no matter how they interleave.
	if execErr := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_battles_one_active_per_user ON battles(user_id) WHERE status = 'active' AND deleted_at IS NULL;").Error; execErr != nil {
		return nil, execErr
	}

	seedTemplates(db, templates)
	seedMonsters(db, monsters)
	seedLevelRewards(db, levelRewards)
	return db, nil
}

func seedTemplates(db *gorm.DB, templates []game.CardTemplate) {
	var count int64
	db.Model(&game.CardTemplate{}).Count(&count)
	if count > 0 {
		return
	}
	rows := make([]game.CardTemplate, len(templates))
	copy(rows, templates)
	db.Create(&rows)
}

func seedMonsters(db *gorm.DB, monsters []game.Monster) {
	var count int64
	db.Model(&game.Monster{}).Count(&count)
	if count > 0 {
		return
	}
	rows := make([]game.Monster, len(monsters))
	copy(rows, monsters)
	db.Create(&rows)
}

// seedLevelRewards inserts configured level rewards once. Rewards are
// configuration entities: operators change them by editing the config
// and wiping/migrating the table, never at runtime.
func seedLevelRewards(db *gorm.DB, rewards []game.LevelReward) {
	var count int64
	db.Model(&game.LevelReward{}).Count(&count)
	if count > 0 {
		return
	}
	if len(rewards) == 0 {
		return
	}
	rows := make([]game.LevelReward, len(rewards))
	copy(rows, rewards)
	db.Create(&rows)
}
