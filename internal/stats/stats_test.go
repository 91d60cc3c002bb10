package stats

import (
	"testing"

	"github.com/YourStyle/moodsprint/internal/game"
)

func testTable() RarityTable {
	return RarityTable{
		HP: map[game.Rarity]float64{
			game.RarityCommon: 1.0, game.RarityUncommon: 1.15, game.RarityRare: 1.35,
			game.RarityEpic: 1.6, game.RarityLegendary: 2.0,
		},
		Attack: map[game.Rarity]float64{
			game.RarityCommon: 1.0, game.RarityUncommon: 1.1, game.RarityRare: 1.25,
			game.RarityEpic: 1.5, game.RarityLegendary: 1.9,
		},
	}
}

func TestCompute_FlooredValues(t *testing.T) {
	table := testTable()
	tpl := &game.CardTemplate{Name: "Ember Fox", BaseHitPoints: 40, BaseAttack: 12}

	cs, err := table.Compute(tpl, game.RarityCommon, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 40 * 1.0 * 1.05 = 42; 12 * 1.0 * 1.05 = 12.6 -> 12
	if cs.MaxHitPoints != 42 {
		t.Fatalf("expected 42 HP, got %d", cs.MaxHitPoints)
	}
	if cs.Attack != 12 {
		t.Fatalf("expected 12 attack, got %d", cs.Attack)
	}
}

func TestCompute_MonotonicAcrossRarities(t *testing.T) {
	table := testTable()
	tpl := &game.CardTemplate{Name: "X", BaseHitPoints: 100, BaseAttack: 50}
	order := []game.Rarity{game.RarityCommon, game.RarityUncommon, game.RarityRare, game.RarityEpic, game.RarityLegendary}

	prevHP, prevAtk := 0, 0
	for _, r := range order {
		cs, err := table.Compute(tpl, r, 5)
		if err != nil {
			t.Fatalf("rarity %s: %v", r, err)
		}
		if cs.MaxHitPoints <= prevHP || cs.Attack <= prevAtk {
			t.Fatalf("stats must strictly increase with rarity, got %+v at %s after (%d,%d)", cs, r, prevHP, prevAtk)
		}
		prevHP, prevAtk = cs.MaxHitPoints, cs.Attack
	}
}

func TestCompute_RejectsMalformedTemplate(t *testing.T) {
	table := testTable()
	if _, err := table.Compute(&game.CardTemplate{Name: "bad", BaseHitPoints: 0, BaseAttack: 5}, game.RarityCommon, 1); err == nil {
		t.Fatalf("expected error for non-positive base HP")
	}
	if _, err := table.Compute(&game.CardTemplate{Name: "bad", BaseHitPoints: 5, BaseAttack: 5}, game.Rarity("mythic"), 1); err == nil {
		t.Fatalf("expected error for unknown rarity")
	}
}

func TestRescale_ProportionalHPCarry(t *testing.T) {
	old := testTable()
	new_ := testTable()
	new_.HP[game.RarityCommon] = 1.6

	card := &game.UserCard{
		Rarity: game.RarityCommon, Level: 1,
		MaxHitPoints: 42, CurrentHitPoints: 21, Attack: 12,
	}
	if err := Rescale(card, &old, &new_, card.Level); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// base 40 recovered, new max = floor(40 * 1.6 * 1.05) = 67
	if card.MaxHitPoints != 67 {
		t.Fatalf("expected max 67, got %d", card.MaxHitPoints)
	}
	// current carries the 50% damage state: round(67 * 0.5) = 34
	if card.CurrentHitPoints != 34 {
		t.Fatalf("expected current 34, got %d", card.CurrentHitPoints)
	}
}

func TestRescale_DividesOutOldMultiplier(t *testing.T) {
	// Same table on both sides: a correct implementation divides the old
	// multiplier out first and is an identity; a naive one that only
	// multiplies would inflate the stats by 1.5x on every run.
	table := RarityTable{
		HP:     map[game.Rarity]float64{game.RarityCommon: 1.5},
		Attack: map[game.Rarity]float64{game.RarityCommon: 1.5},
	}
	card := &game.UserCard{Rarity: game.RarityCommon, MaxHitPoints: 69, CurrentHitPoints: 69, Attack: 18}
	if err := Rescale(card, &table, &table, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.MaxHitPoints != 69 || card.Attack != 18 {
		t.Fatalf("identity rescale changed stats: hp=%d atk=%d", card.MaxHitPoints, card.Attack)
	}
}

func TestRescale_ZeroOldMaxRestoresFullHP(t *testing.T) {
	old := testTable()
	new_ := testTable()
	card := &game.UserCard{Rarity: game.RarityCommon, Level: 1, MaxHitPoints: 0, CurrentHitPoints: 0, Attack: 10}
	if err := Rescale(card, &old, &new_, card.Level); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.CurrentHitPoints != card.MaxHitPoints {
		t.Fatalf("expected full HP after rescale from zero max, got %d/%d", card.CurrentHitPoints, card.MaxHitPoints)
	}
}

func TestRescale_MissingRarityFails(t *testing.T) {
	old := testTable()
	new_ := testTable()
	delete(new_.HP, game.RarityEpic)
	card := &game.UserCard{Rarity: game.RarityEpic, Level: 1, MaxHitPoints: 50, CurrentHitPoints: 50, Attack: 20}
	if err := Rescale(card, &old, &new_, card.Level); err == nil {
		t.Fatalf("expected error for missing rarity in new table")
	}
}
