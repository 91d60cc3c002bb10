package service

import (
	"errors"
	"sync"
	"time"

	"github.com/YourStyle/moodsprint/internal/game"
	"github.com/YourStyle/moodsprint/internal/rewards"
	"github.com/YourStyle/moodsprint/internal/stats"
	"github.com/YourStyle/moodsprint/internal/storage"

	"gorm.io/gorm"
)

// mockRepo is an in-memory Repository for service tests. Transaction
// runs the callback against the same store; rollback fidelity is not
// modeled.
type mockRepo struct {
	profiles  map[string]*game.UserProfile
	templates []game.CardTemplate
	monsters  map[string]*game.Monster
	cards     map[uint]*game.UserCard
	battles   map[string]*game.Battle
	rewards   []game.LevelReward
	grants    []game.RewardGrant
	state     map[string]string

	nextCardID   uint
	nextBattleID uint
}

var errMockNotFound = gorm.ErrRecordNotFound

func newMockRepo() *mockRepo {
	return &mockRepo{
		profiles: map[string]*game.UserProfile{},
		monsters: map[string]*game.Monster{},
		cards:    map[uint]*game.UserCard{},
		battles:  map[string]*game.Battle{},
		state:    map[string]string{},
	}
}

func (m *mockRepo) addProfile(p *game.UserProfile) { m.profiles[p.Email] = p }

func (m *mockRepo) UpsertProfile(email, name string) (*game.UserProfile, error) {
	if p, ok := m.profiles[email]; ok {
		return p, nil
	}
	p := &game.UserProfile{Email: email, Name: name, Level: 1, CampaignEnergy: 5, MaxCampaignEnergy: 5, LastEnergyRegenAt: time.Now()}
	p.ID = uint(len(m.profiles) + 1)
	m.profiles[email] = p
	return p, nil
}

func (m *mockRepo) GetProfileByEmail(email string) (*game.UserProfile, error) {
	if p, ok := m.profiles[email]; ok {
		return p, nil
	}
	return nil, errMockNotFound
}

func (m *mockRepo) GetProfileByID(id uint) (*game.UserProfile, error) {
	for _, p := range m.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errMockNotFound
}

func (m *mockRepo) SaveProfile(p *game.UserProfile) error { m.profiles[p.Email] = p; return nil }

func (m *mockRepo) FindProfilesDueEnergyRegen(now time.Time, interval time.Duration) ([]game.UserProfile, error) {
	out := []game.UserProfile{}
	for _, p := range m.profiles {
		if p.CampaignEnergy < p.MaxCampaignEnergy && !p.LastEnergyRegenAt.After(now.Add(-interval)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockRepo) GetTopProfiles(limit int) ([]game.UserProfile, error) { return nil, nil }

func (m *mockRepo) GetTemplates() ([]game.CardTemplate, error) { return m.templates, nil }

func (m *mockRepo) GetTemplateByName(name string) (*game.CardTemplate, error) {
	for i := range m.templates {
		if m.templates[i].Name == name {
			return &m.templates[i], nil
		}
	}
	return nil, errMockNotFound
}

func (m *mockRepo) SaveTemplateImage(templateID uint, pngBytes []byte) error { return nil }
func (m *mockRepo) GetTemplateImage(templateID uint) ([]byte, error)         { return nil, errMockNotFound }

func (m *mockRepo) CreateCard(c *game.UserCard) error {
	m.nextCardID++
	c.ID = m.nextCardID
	m.cards[c.ID] = c
	return nil
}

func (m *mockRepo) SaveCard(c *game.UserCard) error { m.cards[c.ID] = c; return nil }

func (m *mockRepo) GetCardsByUser(userID uint) ([]game.UserCard, error) {
	out := []game.UserCard{}
	for _, c := range m.cards {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockRepo) GetDeckCards(userID uint) ([]game.UserCard, error) {
	out := []game.UserCard{}
	for id := uint(1); id <= m.nextCardID; id++ {
		c, ok := m.cards[id]
		if ok && c.UserID == userID && c.InDeck && !c.Destroyed {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockRepo) GetCardsByIDs(ids []uint) ([]game.UserCard, error) {
	out := []game.UserCard{}
	for _, id := range ids {
		if c, ok := m.cards[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockRepo) GetLiveCards() ([]game.UserCard, error) {
	out := []game.UserCard{}
	for _, c := range m.cards {
		if !c.Destroyed {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockRepo) GetMonsters() ([]game.Monster, error) { return nil, nil }

func (m *mockRepo) GetMonsterByName(name string) (*game.Monster, error) {
	if mon, ok := m.monsters[name]; ok {
		return mon, nil
	}
	return nil, errMockNotFound
}

func (m *mockRepo) CreateBattle(b *game.Battle) error {
	for _, other := range m.battles {
		if other.UserID == b.UserID && other.Status == game.BattleActive {
			// Mirrors the partial unique index on (user_id) WHERE active.
			return errors.New("UNIQUE constraint failed: battles.user_id")
		}
	}
	m.nextBattleID++
	b.ID = m.nextBattleID
	m.battles[b.PublicID] = b
	return nil
}

func (m *mockRepo) FindActiveBattleByUser(userID uint) (*game.Battle, error) {
	for _, b := range m.battles {
		if b.UserID == userID && b.Status == game.BattleActive {
			return b, nil
		}
	}
	return nil, errMockNotFound
}

func (m *mockRepo) GetBattleByPublicID(publicID string) (*game.Battle, error) {
	if b, ok := m.battles[publicID]; ok {
		return b, nil
	}
	return nil, errMockNotFound
}

func (m *mockRepo) UpdateBattle(b *game.Battle) error { m.battles[b.PublicID] = b; return nil }

func (m *mockRepo) GetActiveLevelRewards() ([]game.LevelReward, error) {
	out := []game.LevelReward{}
	for _, r := range m.rewards {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRepo) GetGrantedRewardIDs(userID uint) (map[uint]bool, error) {
	out := map[uint]bool{}
	for _, g := range m.grants {
		if g.UserID == userID {
			out[g.LevelRewardID] = true
		}
	}
	return out, nil
}

func (m *mockRepo) CreateRewardGrant(g *game.RewardGrant) error {
	for _, existing := range m.grants {
		if existing.UserID == g.UserID && existing.LevelRewardID == g.LevelRewardID {
			return errors.New("UNIQUE constraint failed: reward_grants")
		}
	}
	m.grants = append(m.grants, *g)
	return nil
}

func (m *mockRepo) GetConfigState(key string) (string, error) { return m.state[key], nil }
func (m *mockRepo) SaveConfigState(key, value string) error   { m.state[key] = value; return nil }

func (m *mockRepo) Transaction(fn func(storage.Repository) error) error { return fn(m) }

// --- Shared fixtures ----------------------------------------------------

func testRarityTable() stats.RarityTable {
	return stats.RarityTable{
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

func testService(repo *mockRepo) *Service {
	return testServiceWith(repo)
}

func testServiceWith(repo storage.Repository) *Service {
	return New(repo, Options{
		RarityTable: testRarityTable(),
		StreakMilestones: rewards.MilestoneTable{
			{Days: 3, XP: 50},
			{Days: 7, XP: 150, CardRarity: game.RarityCommon},
		},
		StreakPolicy:        rewards.GrantHighestOnly,
		EnergyRegenInterval: 30 * time.Minute,
	})
}

// copyingRepo hands out a fresh struct per profile read, matching the
// sqlite repository. gate, when set, holds every GetProfileByEmail
// until all expected callers have read, forcing the pre-lock reads to
// interleave.
type copyingRepo struct {
	*mockRepo
	gate *sync.WaitGroup
}

func (r *copyingRepo) GetProfileByEmail(email string) (*game.UserProfile, error) {
	p, err := r.mockRepo.GetProfileByEmail(email)
	if err != nil {
		return nil, err
	}
	cp := *p
	if r.gate != nil {
		r.gate.Done()
		r.gate.Wait()
	}
	return &cp, nil
}

func (r *copyingRepo) GetProfileByID(id uint) (*game.UserProfile, error) {
	p, err := r.mockRepo.GetProfileByID(id)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

// recordingNotifier captures sent messages for assertions.
type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Send(chatID int64, text string) {
	n.mu.Lock()
	n.msgs = append(n.msgs, text)
	n.mu.Unlock()
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

func testProfile(repo *mockRepo, email string, level, energy int) *game.UserProfile {
	p := &game.UserProfile{
		Email: email, Name: "Tester", Level: level,
		CampaignEnergy: energy, MaxCampaignEnergy: 5,
		EnergyLimitUpdatedToLevel: level,
		LastEnergyRegenAt:         time.Now(),
	}
	p.ID = uint(len(repo.profiles) + 1)
	repo.addProfile(p)
	return p
}

func addDeckCard(repo *mockRepo, userID uint, name string, hp, atk int) *game.UserCard {
	c := &game.UserCard{UserID: userID, Name: name, Rarity: game.RarityCommon, Level: 1, MaxHitPoints: hp, CurrentHitPoints: hp, Attack: atk, InDeck: true}
	_ = repo.CreateCard(c)
	return c
}
