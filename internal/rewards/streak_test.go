package rewards

import (
	"testing"

	"github.com/YourStyle/moodsprint/internal/game"
)

func milestones() MilestoneTable {
	return MilestoneTable{
		{Days: 3, XP: 50},
		{Days: 7, XP: 150, CardRarity: game.RarityCommon},
		{Days: 14, XP: 300, CardRarity: game.RarityUncommon},
	}
}

func TestMilestoneTable_Validate(t *testing.T) {
	if err := milestones().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := MilestoneTable{{Days: 7, XP: 10}, {Days: 3, XP: 10}}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for non-ascending table")
	}
	if err := (MilestoneTable{{Days: 3, XP: 0}}).Validate(); err == nil {
		t.Fatalf("expected error for zero xp")
	}
}

func TestEligible_GrantHighestOnly(t *testing.T) {
	// Streak jumped from 3 to 10: days 7 is the highest due milestone and
	// the only one granted under the default policy.
	due := milestones().Eligible(10, 3, GrantHighestOnly)
	if len(due) != 1 || due[0].Days != 7 {
		t.Fatalf("expected only the 7-day milestone, got %+v", due)
	}
}

func TestEligible_GrantAllSkipped(t *testing.T) {
	due := milestones().Eligible(20, 0, GrantAllSkipped)
	if len(due) != 3 {
		t.Fatalf("expected all three milestones, got %+v", due)
	}
	for i := 1; i < len(due); i++ {
		if due[i-1].Days >= due[i].Days {
			t.Fatalf("milestones must apply in ascending order, got %+v", due)
		}
	}
}

func TestEligible_NothingDue(t *testing.T) {
	if due := milestones().Eligible(7, 7, GrantHighestOnly); due != nil {
		t.Fatalf("expected nothing due at the watermark, got %+v", due)
	}
	if due := milestones().Eligible(2, 0, GrantAllSkipped); due != nil {
		t.Fatalf("expected nothing due below the first milestone, got %+v", due)
	}
}
