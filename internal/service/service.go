package service

import (
	"errors"
	"sync"
	"time"

	"github.com/YourStyle/moodsprint/internal/apperr"
	"github.com/YourStyle/moodsprint/internal/game"
	"github.com/YourStyle/moodsprint/internal/rewards"
	"github.com/YourStyle/moodsprint/internal/stats"
	"github.com/YourStyle/moodsprint/internal/storage"

	"gorm.io/gorm"
)

// Notifier delivers fire-and-forget reward notifications. Failures are
// the notifier's problem: a send must never block or roll back a grant.
type Notifier interface {
	Send(chatID int64, text string)
}

// CardArt ensures a minted card's template art exists, asynchronously.
// Minting leaves the image pending; the implementation fills it in.
type CardArt interface {
	Ensure(templateID uint, name string, rarity game.Rarity)
}

// Options carries the configuration slice the service needs. All fields
// are immutable after startup.
type Options struct {
	RarityTable         stats.RarityTable
	StreakMilestones    rewards.MilestoneTable
	StreakPolicy        rewards.StreakPolicy
	EnergyRegenInterval time.Duration
}

// Service orchestrates the battle and progression core over the
// repository. All mutations of a user's profile, cards or battle happen
// under that user's keyed lock plus a DB transaction, so concurrent
// requests from the same user serialize.
type Service struct {
	repo  storage.Repository
	opts  Options
	notif Notifier
	art   CardArt

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func New(repo storage.Repository, opts Options) *Service {
	return &Service{repo: repo, opts: opts, locks: make(map[uint]*sync.Mutex)}
}

// SetNotifier wires the outbound notification channel (optional).
func (s *Service) SetNotifier(n Notifier) { s.notif = n }

// SetCardArt wires the async card art pipeline (optional).
func (s *Service) SetCardArt(a CardArt) { s.art = a }

// lockUser serializes all mutating operations for one user. Returns the
// unlock func.
func (s *Service) lockUser(userID uint) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *Service) notify(p *game.UserProfile, text string) {
	if s.notif == nil || p.TelegramChatID == 0 {
		return
	}
	s.notif.Send(p.TelegramChatID, text)
}

func (s *Service) ensureArt(templateID uint, name string, rarity game.Rarity) {
	if s.art == nil {
		return
	}
	s.art.Ensure(templateID, name, rarity)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// profileByEmail loads a profile, translating a missing row to the
// taxonomy not-found error and everything else to an internal one.
func (s *Service) profileByEmail(email string) (*game.UserProfile, error) {
	p, err := s.repo.GetProfileByEmail(email)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, apperr.Internal("failed to load profile", err)
	}
	return p, nil
}

// lockProfile acquires the user's lock and reloads the profile under
// it. The pre-lock read only resolves the lock key; another request may
// commit between that read and the lock grant, so mutating operations
// must work on the fresh copy, never the stale one.
func (s *Service) lockProfile(email string) (*game.UserProfile, func(), error) {
	p, err := s.profileByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	unlock := s.lockUser(p.ID)
	fresh, err := s.repo.GetProfileByID(p.ID)
	if err != nil {
		unlock()
		if isNotFound(err) {
			return nil, nil, apperr.NotFound("profile not found")
		}
		return nil, nil, apperr.Internal("failed to load profile", err)
	}
	return fresh, unlock, nil
}
