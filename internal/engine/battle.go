package engine

import (
	"github.com/YourStyle/moodsprint/internal/apperr"
	"github.com/YourStyle/moodsprint/internal/game"
)

// NewBattleState snapshots the user's deck cards and the monster into a
// fresh battle document. Copy-on-start semantics: the snapshot is an
// independent copy, so damage during the battle never touches the
// persisted UserCard rows until resolution. Turn order is fixed here and
// never reordered: cards in deck order, monster last (no speed stat
// exists in this model).
func NewBattleState(deck []game.UserCard, monster *game.Monster) (*game.BattleState, error) {
	usable := make([]game.UserCard, 0, len(deck))
	for _, c := range deck {
		if c.InDeck && c.Usable() {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return nil, apperr.Validation("deck is empty")
	}
	if monster.HitPoints <= 0 || monster.Attack <= 0 {
		return nil, apperr.Validation("monster has no combat stats configured")
	}

	st := &game.BattleState{Version: game.StateVersion}
	for i, c := range usable {
		st.Participants = append(st.Participants, game.Participant{
			ID:        i + 1,
			Kind:      game.ParticipantCard,
			CardID:    c.ID,
			Name:      c.Name,
			MaxHP:     c.MaxHitPoints,
			CurrentHP: c.MaxHitPoints,
			Attack:    c.Attack,
		})
	}
	st.Participants = append(st.Participants, game.Participant{
		ID:         len(usable) + 1,
		Kind:       game.ParticipantMonster,
		Name:       monster.Name,
		MaxHP:      monster.HitPoints,
		CurrentHP:  monster.HitPoints,
		Attack:     monster.Attack,
		SpecialTag: monster.SpecialTag,
	})
	return st, nil
}

// Abandon moves an active battle to the abandoned terminal state. No
// rewards are granted.
func Abandon(b *game.Battle) error {
	if b.Status != game.BattleActive {
		return apperr.InvalidState("battle is already finished")
	}
	b.Status = game.BattleAbandoned
	return nil
}
