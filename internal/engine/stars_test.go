package engine

import (
	"testing"

	"github.com/YourStyle/moodsprint/internal/apperr"
	"github.com/YourStyle/moodsprint/internal/game"
)

func wonBattle(rounds, cardsLost int, participants []game.Participant) *game.Battle {
	return &game.Battle{
		PublicID:     "b1",
		Status:       game.BattleWon,
		CurrentRound: rounds,
		State:        &game.BattleState{Version: game.StateVersion, Participants: participants, CardsLost: cardsLost},
	}
}

func threeStarTemplate() game.StarTemplate {
	return game.StarTemplate{
		Base: 1,
		Max:  3,
		Conditions: []game.StarCondition{
			{Kind: game.StarRoundsMax, Threshold: 5, Stars: 1},
			{Kind: game.StarHPRemainingMin, Threshold: 0.5, Stars: 1},
		},
	}
}

func TestResolveRewards_FullClear(t *testing.T) {
	// Won in 4 rounds with 75% of the deck's HP intact: base 1 + both
	// bonus conditions = 3 stars.
	b := wonBattle(4, 0, []game.Participant{
		{ID: 1, Kind: game.ParticipantCard, Name: "Fox", MaxHP: 40, CurrentHP: 30},
		{ID: 2, Kind: game.ParticipantCard, Name: "Golem", MaxHP: 60, CurrentHP: 45},
		{ID: 3, Kind: game.ParticipantMonster, Name: "Imp", MaxHP: 80, CurrentHP: 0, Defeated: true},
	})
	stars, err := ResolveRewards(b, threeStarTemplate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stars != 3 {
		t.Fatalf("expected 3 stars, got %d", stars)
	}
	if !b.State.RewardsGranted || b.State.StarsAwarded != 3 {
		t.Fatalf("state not marked granted: %+v", b.State)
	}
}

func TestResolveRewards_ConditionsEvaluatedIndependently(t *testing.T) {
	// 7 rounds misses rounds_max; HP condition still counts.
	b := wonBattle(7, 1, []game.Participant{
		{ID: 1, Kind: game.ParticipantCard, Name: "Fox", MaxHP: 40, CurrentHP: 40},
		{ID: 2, Kind: game.ParticipantMonster, Name: "Imp", MaxHP: 80, CurrentHP: 0, Defeated: true},
	})
	stars, err := ResolveRewards(b, threeStarTemplate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stars != 2 {
		t.Fatalf("expected 2 stars, got %d", stars)
	}
}

func TestResolveRewards_CapAtMax(t *testing.T) {
	tpl := threeStarTemplate()
	tpl.Base = 3
	b := wonBattle(1, 0, []game.Participant{
		{ID: 1, Kind: game.ParticipantCard, Name: "Fox", MaxHP: 40, CurrentHP: 40},
		{ID: 2, Kind: game.ParticipantMonster, Name: "Imp", MaxHP: 80, CurrentHP: 0, Defeated: true},
	})
	stars, err := ResolveRewards(b, tpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stars != 3 {
		t.Fatalf("expected cap at 3 stars, got %d", stars)
	}
}

func TestResolveRewards_OnlyOnWonBattles(t *testing.T) {
	b := wonBattle(1, 0, nil)
	b.Status = game.BattleLost
	if _, err := ResolveRewards(b, threeStarTemplate()); err == nil {
		t.Fatalf("expected error resolving a lost battle")
	}
}

func TestResolveRewards_SecondResolveFails(t *testing.T) {
	b := wonBattle(2, 0, []game.Participant{
		{ID: 1, Kind: game.ParticipantCard, Name: "Fox", MaxHP: 40, CurrentHP: 40},
		{ID: 2, Kind: game.ParticipantMonster, Name: "Imp", MaxHP: 80, CurrentHP: 0, Defeated: true},
	})
	if _, err := ResolveRewards(b, threeStarTemplate()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := ResolveRewards(b, threeStarTemplate())
	if err == nil {
		t.Fatalf("expected error on second resolve")
	}
	if apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("expected invalid_state kind, got %s", apperr.KindOf(err))
	}
}
