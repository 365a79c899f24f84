package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pawme/pawme-backend/internal/config"
	"github.com/pawme/pawme-backend/internal/dto"
	"github.com/pawme/pawme-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

// newTestDB opens a fresh in-memory SQLite database and migrates the schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A single connection keeps the shared-cache memory DB alive for the
	// whole test.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Reward{},
		&models.AppSettings{},
		&models.EmailTemplate{},
		&models.SocialConnection{},
		&models.DailyMetric{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 168 * time.Hour,
		VipDepositCents:  100,
		SenderEmail:      "PawMe <test@pawme.app>",
	}
}

type sentMail struct {
	To      string
	Subject string
	HTML    string
}

// fakeMailer records sends instead of delivering them.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failErr error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *fakeMailer) sentTo(to string) []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, s := range m.sent {
		if s.To == to {
			out = append(out, s)
		}
	}
	return out
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// fakeCache is an in-memory Cache with the same JSON round-trip the Redis
// implementation performs. Expirations are not simulated.
type fakeCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string][]byte{}}
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = b
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	b, ok := c.items[key]
	c.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// testStack wires the full service graph against one test database.
type testStack struct {
	db       *gorm.DB
	cfg      *config.Config
	mailer   *fakeMailer
	cache    *fakeCache
	settings *SettingsService
	metrics  *MetricsService
	email    *EmailService
	referral *ReferralService
	auth     *AuthService
	rewards  *RewardService
	vip      *VipService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	db := newTestDB(t)
	cfg := testConfig()
	mailer := &fakeMailer{}
	cache := newFakeCache()

	settings := NewSettingsService(db)
	metrics := NewMetricsService(db)
	email := NewEmailService(db, mailer, settings, metrics)
	referralSvc := NewReferralService(db, settings, metrics)
	auth := NewAuthService(db, cfg, cache, referralSvc, email, metrics)
	rewards := NewRewardService(db, settings, email, metrics)
	vip := NewVipService(db, cfg, settings, email)

	return &testStack{
		db:       db,
		cfg:      cfg,
		mailer:   mailer,
		cache:    cache,
		settings: settings,
		metrics:  metrics,
		email:    email,
		referral: referralSvc,
		auth:     auth,
		rewards:  rewards,
		vip:      vip,
	}
}

// register creates a user through the real signup path and returns the
// stored row.
func (ts *testStack) register(t *testing.T, email, name, referralCode string) *models.User {
	t.Helper()

	resp, err := ts.auth.Register(context.Background(), &dto.RegisterRequest{
		Email:        email,
		Name:         name,
		Password:     "super-secret-1",
		ReferralCode: referralCode,
	})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}

	var user models.User
	if err := ts.db.First(&user, "id = ?", resp.User.ID).Error; err != nil {
		t.Fatalf("registered user not found: %v", err)
	}
	return &user
}

func (ts *testStack) reload(t *testing.T, user *models.User) *models.User {
	t.Helper()
	var fresh models.User
	if err := ts.db.First(&fresh, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return &fresh
}
