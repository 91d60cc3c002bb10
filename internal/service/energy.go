package service

import (
	"time"

	"github.com/YourStyle/moodsprint/internal/apperr"
	"github.com/YourStyle/moodsprint/internal/constants"
	"github.com/YourStyle/moodsprint/internal/energy"
	"github.com/YourStyle/moodsprint/internal/game"
	"github.com/YourStyle/moodsprint/internal/logging"
)

// SpendEnergy consumes one campaign energy point after crediting any
// pending regeneration.
func (s *Service) SpendEnergy(email string) (*game.UserProfile, error) {
	p, unlock, err := s.lockProfile(email)
	if err != nil {
		return nil, err
	}
	defer unlock()

	energy.Regen(p, time.Now(), s.opts.EnergyRegenInterval)
	if err := energy.Spend(p); err != nil {
		return nil, err
	}
	if err := s.repo.SaveProfile(p); err != nil {
		return nil, apperr.Internal("failed to save profile", err)
	}
	return p, nil
}

// GetProfile returns the user's profile with regen applied lazily, so
// readers always see the energy they would have if they acted now.
func (s *Service) GetProfile(email, name string) (*game.UserProfile, error) {
	created, err := s.repo.UpsertProfile(email, name)
	if err != nil {
		return nil, apperr.Internal("failed to load profile", err)
	}
	unlock := s.lockUser(created.ID)
	defer unlock()

	// Reload under the lock; the upsert result may already be stale.
	p, err := s.repo.GetProfileByID(created.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load profile", err)
	}
	if credited := energy.Regen(p, time.Now(), s.opts.EnergyRegenInterval); credited > 0 {
		if err := s.repo.SaveProfile(p); err != nil {
			return nil, apperr.Internal("failed to save profile", err)
		}
	}
	return p, nil
}

// RegenDueProfiles is the background scanner pass: credit regeneration
// for every profile below its cap whose interval elapsed. Errors on one
// profile are logged and do not stop the sweep.
func (s *Service) RegenDueProfiles(now time.Time) {
	due, err := s.repo.FindProfilesDueEnergyRegen(now, s.opts.EnergyRegenInterval)
	if err != nil {
		logging.Error("energy regen scan failed", err, nil)
		return
	}
	for i := range due {
		p := &due[i]
		unlock := s.lockUser(p.ID)
		// Reload under the lock; the scan snapshot may be stale.
		fresh, err := s.repo.GetProfileByID(p.ID)
		if err != nil {
			unlock()
			continue
		}
		if credited := energy.Regen(fresh, now, s.opts.EnergyRegenInterval); credited > 0 {
			if err := s.repo.SaveProfile(fresh); err != nil {
				logging.Error("energy regen save failed", err, logging.Fields{constants.LogFieldUserID: fresh.ID})
			}
		}
		unlock()
	}
}
