package keys

import (
	"strings"

	"github.com/YourStyle/moodsprint/internal/game"
)

// CardImageKey produces a canonical key for a card template's art:
// lowercase name with spaces replaced by underscores, suffixed with the
// rarity tier. Suitable for stable cache keys across DB recreations
// where numeric IDs can change.
func CardImageKey(name string, rarity game.Rarity) string {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	if rarity == "" {
		return s
	}
	return s + ":" + string(rarity)
}
