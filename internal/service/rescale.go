package service

import (
	"encoding/json"
	"reflect"

	"github.com/YourStyle/moodsprint/internal/apperr"
	"github.com/YourStyle/moodsprint/internal/logging"
	"github.com/YourStyle/moodsprint/internal/stats"
	"github.com/YourStyle/moodsprint/internal/storage"
)

const rarityTableStateKey = "rarity_multipliers"

// RescaleCardStats runs at startup: when the configured rarity
// multiplier table differs from the one persisted cards were scaled
// with, every live (non-destroyed) card is rescaled from the old table
// to the new one, dividing the old multiplier out first so repeated
// runs never compound, and the persisted table is replaced. Current HP
// carries over proportionally (see stats.Rescale).
func RescaleCardStats(repo storage.Repository, table stats.RarityTable) error {
	stored, err := repo.GetConfigState(rarityTableStateKey)
	if err != nil {
		return apperr.Internal("failed to read stored rarity table", err)
	}
	encoded, err := json.Marshal(table)
	if err != nil {
		return apperr.Internal("failed to encode rarity table", err)
	}
	if stored == "" {
		return repo.SaveConfigState(rarityTableStateKey, string(encoded))
	}

	var old stats.RarityTable
	if err := json.Unmarshal([]byte(stored), &old); err != nil {
		return apperr.Internal("stored rarity table is malformed", err)
	}
	if reflect.DeepEqual(old, table) {
		return nil
	}

	cards, err := repo.GetLiveCards()
	if err != nil {
		return apperr.Internal("failed to load live cards", err)
	}
	logging.Info("rarity table changed; rescaling card stats", logging.Fields{"cards": len(cards)})

	err = repo.Transaction(func(tx storage.Repository) error {
		for i := range cards {
			c := &cards[i]
			if err := stats.Rescale(c, &old, &table, c.Level); err != nil {
				// Data-integrity problem on one card: report it, keep
				// the migration going for the rest.
				logging.Error("card rescale failed", err, logging.Fields{"card_id": c.ID})
				continue
			}
			if err := tx.SaveCard(c); err != nil {
				return err
			}
		}
		return tx.SaveConfigState(rarityTableStateKey, string(encoded))
	})
	if err != nil {
		return apperr.Internal("failed to persist rescaled stats", err)
	}
	return nil
}
