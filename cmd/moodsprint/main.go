package main

import (
	"os"
	"time"

	"github.com/YourStyle/moodsprint/internal/api"
	"github.com/YourStyle/moodsprint/internal/cardimage"
	"github.com/YourStyle/moodsprint/internal/config"
	"github.com/YourStyle/moodsprint/internal/constants"
	"github.com/YourStyle/moodsprint/internal/logging"
	"github.com/YourStyle/moodsprint/internal/notify"
	"github.com/YourStyle/moodsprint/internal/openaiclient"
	"github.com/YourStyle/moodsprint/internal/service"
	"github.com/YourStyle/moodsprint/internal/storage"
	"github.com/YourStyle/moodsprint/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is a local development convenience; absence is not an error.
	_ = godotenv.Load()
	checkEnvVars([]string{constants.EnvOpenAIAPIKey})

	// Game configuration file (required). Path may be provided via
	// MOODSPRINT_CONFIG or defaults to ./moodsprint_config.json in the
	// current working directory.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = "./moodsprint_config.json"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Fatal("Missing or invalid moodsprint configuration", err, logging.Fields{"config_path": configPath, "hint": "create a moodsprint_config.json with 'card_templates', 'monsters', 'rarity_multipliers' and optional keys: level_rewards, streak_milestones, energy, worker, server.address, card_image_prompt"})
	}
	if cfg.CardImagePromptTemplate != "" {
		openaiclient.SetCardImagePromptTemplate(cfg.CardImagePromptTemplate)
	}

	// Allow the DB path to be configured via MOODSPRINT_DB. Default to a
	// `data/` directory for local development.
	dbPath := os.Getenv(constants.EnvDBPath)
	if dbPath == "" {
		dbPath = "./data/moodsprint.db"
	}
	db, err := storage.OpenAndMigrate(dbPath, cfg.CardTemplates, cfg.Monsters, cfg.LevelRewards)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}
	repo := storage.NewSQLiteRepository(db, cfg.CardTemplates, cfg.Monsters)

	// If the rarity multiplier table changed since the last run, rescale
	// every live card before taking traffic.
	if err := service.RescaleCardStats(repo, cfg.RarityTable); err != nil {
		logging.Fatal("Failed to rescale card stats", err, nil)
	}

	pool := worker.NewPool(worker.Options{
		Workers:     cfg.WorkerCount,
		Retries:     cfg.WorkerRetries,
		RetryDelay:  cfg.WorkerRetryDelay,
		SoftTimeout: cfg.WorkerSoftTimeout,
		HardTimeout: cfg.WorkerHardTimeout,
	})
	defer pool.Shutdown()

	svc := service.New(repo, service.Options{
		RarityTable:         cfg.RarityTable,
		StreakMilestones:    cfg.StreakMilestones,
		StreakPolicy:        cfg.StreakPolicy,
		EnergyRegenInterval: cfg.EnergyRegenInterval,
	})
	svc.SetCardArt(cardimage.NewPipeline(repo, pool))

	// Telegram notifications are optional: without a token the service
	// runs silently.
	if tg, err := notify.NewTelegramFromEnv(); err == nil {
		svc.SetNotifier(tg)
	} else {
		logging.Info("telegram notifications disabled", logging.Fields{"reason": err.Error()})
	}

	// Background scanner: periodically credit energy regeneration for
	// profiles below their cap, so energy refills even while the user is
	// away.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			svc.RegenDueProfiles(time.Now())
		}
	}()

	router := gin.Default()
	api.RegisterRoutes(router, api.NewHandler(repo, svc))

	// MOODSPRINT_ADDR overrides the configured listen address, so the
	// container healthcheck and the server can share one setting.
	addr := cfg.ServerAddress
	if v := os.Getenv(constants.EnvServerAddr); v != "" {
		addr = v
	}
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}

func checkEnvVars(vars []string) {
	for _, v := range vars {
		if os.Getenv(v) == "" {
			logging.Fatal("Required environment variable not set", nil, logging.Fields{"var": v})
		}
	}
}
