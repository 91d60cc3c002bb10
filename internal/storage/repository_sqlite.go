package storage

import (
	"errors"
	"strings"
	"time"

	"github.com/YourStyle/moodsprint/internal/game"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sqliteRepository struct {
	db *gorm.DB
	// templateByName / monsterByName map lowercase name -> config
	// definition (stats). Config is the source of truth for stats.
	templateByName map[string]game.CardTemplate
	monsterByName  map[string]game.Monster
}

func NewSQLiteRepository(db *gorm.DB, templates []game.CardTemplate, monsters []game.Monster) Repository {
	tm := make(map[string]game.CardTemplate, len(templates))
	for _, t := range templates {
		tm[strings.ToLower(t.Name)] = t
	}
	mm := make(map[string]game.Monster, len(monsters))
	for _, m := range monsters {
		mm[strings.ToLower(m.Name)] = m
	}
	return &sqliteRepository{db: db, templateByName: tm, monsterByName: mm}
}

func (r *sqliteRepository) withDB(db *gorm.DB) *sqliteRepository {
	return &sqliteRepository{db: db, templateByName: r.templateByName, monsterByName: r.monsterByName}
}

func (r *sqliteRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(r.withDB(tx))
	})
}

// --- Profiles ----------------------------------------------------------

func (r *sqliteRepository) UpsertProfile(email, name string) (*game.UserProfile, error) {
	var p game.UserProfile
	if err := r.db.Where("email = ?", email).First(&p).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		p = game.UserProfile{
			Email:             email,
			Name:              name,
			Level:             1,
			CampaignEnergy:    5,
			MaxCampaignEnergy: 5,
			LastEnergyRegenAt: time.Now(),
		}
		if err := r.db.Create(&p).Error; err != nil {
			return nil, err
		}
		return &p, nil
	}
	if name != "" && p.Name != name {
		p.Name = name
		if err := r.db.Save(&p).Error; err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (r *sqliteRepository) GetProfileByEmail(email string) (*game.UserProfile, error) {
	var p game.UserProfile
	if err := r.db.Where("email = ?", email).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *sqliteRepository) GetProfileByID(id uint) (*game.UserProfile, error) {
	var p game.UserProfile
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *sqliteRepository) SaveProfile(p *game.UserProfile) error {
	return r.db.Save(p).Error
}

func (r *sqliteRepository) FindProfilesDueEnergyRegen(now time.Time, interval time.Duration) ([]game.UserProfile, error) {
	var out []game.UserProfile
	cutoff := now.Add(-interval)
	err := r.db.
		Where("campaign_energy < max_campaign_energy AND last_energy_regen_at <= ?", cutoff).
		Find(&out).Error
	return out, err
}

func (r *sqliteRepository) GetTopProfiles(limit int) ([]game.UserProfile, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []game.UserProfile
	if err := r.db.Model(&game.UserProfile{}).
		Order("level DESC").
		Order("xp DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// --- Card templates ----------------------------------------------------

func (r *sqliteRepository) overrideTemplate(t *game.CardTemplate) {
	if conf, ok := r.templateByName[strings.ToLower(t.Name)]; ok {
		t.BaseHitPoints = conf.BaseHitPoints
		t.BaseAttack = conf.BaseAttack
		t.Rarity = conf.Rarity
		t.UnlockLevel = conf.UnlockLevel
		t.ArchetypeTier = conf.ArchetypeTier
	}
}

func (r *sqliteRepository) GetTemplates() ([]game.CardTemplate, error) {
	var templates []game.CardTemplate
	if err := r.db.Find(&templates).Error; err != nil {
		return nil, err
	}
	for i := range templates {
		r.overrideTemplate(&templates[i])
	}
	return templates, nil
}

func (r *sqliteRepository) GetTemplateByName(name string) (*game.CardTemplate, error) {
	var t game.CardTemplate
	if err := r.db.Where("lower(name) = ?", strings.ToLower(name)).First(&t).Error; err != nil {
		return nil, err
	}
	r.overrideTemplate(&t)
	return &t, nil
}

func (r *sqliteRepository) SaveTemplateImage(templateID uint, pngBytes []byte) error {
	return r.db.Model(&game.CardTemplate{}).Where("id = ?", templateID).Update("image_png", pngBytes).Error
}

func (r *sqliteRepository) GetTemplateImage(templateID uint) ([]byte, error) {
	var t game.CardTemplate
	if err := r.db.Select("image_png").First(&t, templateID).Error; err != nil {
		return nil, err
	}
	return t.ImagePNG, nil
}

// --- User cards --------------------------------------------------------

func (r *sqliteRepository) CreateCard(c *game.UserCard) error {
	return r.db.Create(c).Error
}

func (r *sqliteRepository) SaveCard(c *game.UserCard) error {
	return r.db.Save(c).Error
}

func (r *sqliteRepository) GetCardsByUser(userID uint) ([]game.UserCard, error) {
	var cards []game.UserCard
	err := r.db.Where("user_id = ?", userID).Order("id").Find(&cards).Error
	return cards, err
}

func (r *sqliteRepository) GetDeckCards(userID uint) ([]game.UserCard, error) {
	var cards []game.UserCard
	err := r.db.
		Where("user_id = ? AND in_deck = ? AND destroyed = ?", userID, true, false).
		Order("id").
		Find(&cards).Error
	return cards, err
}

func (r *sqliteRepository) GetCardsByIDs(ids []uint) ([]game.UserCard, error) {
	var cards []game.UserCard
	err := r.db.Where("id IN ?", ids).Find(&cards).Error
	return cards, err
}

func (r *sqliteRepository) GetLiveCards() ([]game.UserCard, error) {
	var cards []game.UserCard
	err := r.db.Where("destroyed = ?", false).Find(&cards).Error
	return cards, err
}

// --- Monsters ----------------------------------------------------------

func (r *sqliteRepository) overrideMonster(m *game.Monster) {
	if conf, ok := r.monsterByName[strings.ToLower(m.Name)]; ok {
		m.HitPoints = conf.HitPoints
		m.Attack = conf.Attack
		m.SpecialTag = conf.SpecialTag
		m.Difficulty = conf.Difficulty
		m.EnergyCost = conf.EnergyCost
		m.SparksReward = conf.SparksReward
		m.CardXPReward = conf.CardXPReward
		m.Stars = conf.Stars
	}
}

func (r *sqliteRepository) GetMonsters() ([]game.Monster, error) {
	var monsters []game.Monster
	if err := r.db.Find(&monsters).Error; err != nil {
		return nil, err
	}
	for i := range monsters {
		r.overrideMonster(&monsters[i])
	}
	return monsters, nil
}

func (r *sqliteRepository) GetMonsterByName(name string) (*game.Monster, error) {
	var m game.Monster
	if err := r.db.Where("lower(name) = ?", strings.ToLower(name)).First(&m).Error; err != nil {
		return nil, err
	}
	r.overrideMonster(&m)
	return &m, nil
}

// --- Battles -----------------------------------------------------------

func (r *sqliteRepository) CreateBattle(b *game.Battle) error {
	if err := b.EncodeState(); err != nil {
		return err
	}
	return r.db.Create(b).Error
}

func (r *sqliteRepository) FindActiveBattleByUser(userID uint) (*game.Battle, error) {
	var b game.Battle
	err := r.db.Where("user_id = ? AND status = ?", userID, game.BattleActive).First(&b).Error
	if err != nil {
		return nil, err
	}
	if err := b.DecodeState(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *sqliteRepository) GetBattleByPublicID(publicID string) (*game.Battle, error) {
	var b game.Battle
	if err := r.db.Where("public_id = ?", publicID).First(&b).Error; err != nil {
		return nil, err
	}
	if err := b.DecodeState(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *sqliteRepository) UpdateBattle(b *game.Battle) error {
	if err := b.EncodeState(); err != nil {
		return err
	}
	return r.db.Save(b).Error
}

// --- Level rewards and grant log ---------------------------------------

func (r *sqliteRepository) GetActiveLevelRewards() ([]game.LevelReward, error) {
	var out []game.LevelReward
	err := r.db.Where("active = ?", true).Order("level").Find(&out).Error
	return out, err
}

func (r *sqliteRepository) GetGrantedRewardIDs(userID uint) (map[uint]bool, error) {
	var grants []game.RewardGrant
	if err := r.db.Where("user_id = ?", userID).Find(&grants).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(grants))
	for _, g := range grants {
		out[g.LevelRewardID] = true
	}
	return out, nil
}

func (r *sqliteRepository) CreateRewardGrant(g *game.RewardGrant) error {
	return r.db.Create(g).Error
}

// --- Config state ------------------------------------------------------

func (r *sqliteRepository) GetConfigState(key string) (string, error) {
	var cs game.ConfigState
	if err := r.db.Where("key = ?", key).First(&cs).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return cs.Value, nil
}

func (r *sqliteRepository) SaveConfigState(key, value string) error {
	cs := game.ConfigState{Key: key, Value: value}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&cs).Error
}
