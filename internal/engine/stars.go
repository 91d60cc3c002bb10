package engine

import (
	"github.com/YourStyle/moodsprint/internal/apperr"
	"github.com/YourStyle/moodsprint/internal/game"
)

// ResolveRewards computes the star rating for a won battle from the
// monster's configured star conditions. Each condition is evaluated
// independently; stars sum with the base and cap at the template max.
// The RewardsGranted flag guards the call: a battle's rewards resolve at
// most once, and a repeat call fails rather than double-granting.
func ResolveRewards(b *game.Battle, tpl game.StarTemplate) (int, error) {
	if b.Status != game.BattleWon {
		return 0, apperr.InvalidState("rewards resolve only on a won battle")
	}
	if b.State == nil {
		return 0, apperr.Internal("battle state not decoded", nil)
	}
	if b.State.RewardsGranted {
		return 0, apperr.InvalidState("battle rewards already granted")
	}

	stars := tpl.Base
	for _, c := range tpl.Conditions {
		if conditionMet(b, c) {
			stars += c.Stars
		}
	}
	if tpl.Max > 0 && stars > tpl.Max {
		stars = tpl.Max
	}

	b.State.RewardsGranted = true
	b.State.StarsAwarded = stars
	return stars, nil
}

func conditionMet(b *game.Battle, c game.StarCondition) bool {
	switch c.Kind {
	case game.StarRoundsMax:
		return float64(b.CurrentRound) <= c.Threshold
	case game.StarCardsLostMax:
		return float64(b.State.CardsLost) <= c.Threshold
	case game.StarHPRemainingMin:
		return hpRemainingFraction(b.State) >= c.Threshold
	}
	return false
}

// hpRemainingFraction is the aggregate remaining HP of the player side
// over its aggregate max.
func hpRemainingFraction(st *game.BattleState) float64 {
	cur, max := 0, 0
	for _, p := range st.Side(game.ParticipantCard) {
		cur += p.CurrentHP
		max += p.MaxHP
	}
	if max == 0 {
		return 0
	}
	return float64(cur) / float64(max)
}
