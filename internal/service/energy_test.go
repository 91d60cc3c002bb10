package service

import (
	"sync"
	"testing"
	"time"

	"github.com/YourStyle/moodsprint/internal/apperr"
)

func TestSpendEnergy(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	testProfile(repo, "a@b.c", 1, 2)

	out, err := svc.SpendEnergy("a@b.c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.CampaignEnergy != 1 {
		t.Fatalf("expected 1 energy, got %d", out.CampaignEnergy)
	}
}

func TestSpendEnergy_CreditsRegenFirst(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	p := testProfile(repo, "a@b.c", 1, 0)
	// An hour idle at 30m per point: two points accrue, so the spend
	// succeeds even from an empty pool.
	p.LastEnergyRegenAt = time.Now().Add(-time.Hour)

	out, err := svc.SpendEnergy("a@b.c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.CampaignEnergy != 1 {
		t.Fatalf("expected 1 energy after regen+spend, got %d", out.CampaignEnergy)
	}
}

func TestSpendEnergy_EmptyPool(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	testProfile(repo, "a@b.c", 1, 0)

	_, err := svc.SpendEnergy("a@b.c")
	if err == nil {
		t.Fatalf("expected insufficient energy")
	}
	if apperr.KindOf(err) != apperr.KindInsufficient {
		t.Fatalf("expected insufficient kind, got %s", apperr.KindOf(err))
	}
}

func TestSpendEnergy_ConcurrentSpendsSerialize(t *testing.T) {
	base := newMockRepo()
	gate := &sync.WaitGroup{}
	gate.Add(2)
	repo := &copyingRepo{mockRepo: base, gate: gate}
	svc := testServiceWith(repo)
	testProfile(base, "racer@b.c", 1, 5)

	// Both requests read the profile before either takes the user lock;
	// each must still see the other's committed spend.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.SpendEnergy("racer@b.c"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := base.profiles["racer@b.c"].CampaignEnergy; got != 3 {
		t.Fatalf("two spends from 5 energy must leave 3, got %d", got)
	}
}

func TestGetProfile_CreatesAndRegens(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)

	p, err := svc.GetProfile("new@b.c", "Newcomer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Level != 1 || p.CampaignEnergy != 5 || p.MaxCampaignEnergy != 5 {
		t.Fatalf("unexpected fresh profile: %+v", p)
	}
}

func TestRegenDueProfiles(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	p := testProfile(repo, "a@b.c", 1, 1)
	p.LastEnergyRegenAt = time.Now().Add(-2 * time.Hour)
	full := testProfile(repo, "full@b.c", 1, 5)
	full.CampaignEnergy = full.MaxCampaignEnergy

	svc.RegenDueProfiles(time.Now())
	if p.CampaignEnergy != 5 {
		t.Fatalf("expected refill to 5, got %d", p.CampaignEnergy)
	}
	if full.CampaignEnergy != 5 {
		t.Fatalf("full profile must stay at cap, got %d", full.CampaignEnergy)
	}
}
