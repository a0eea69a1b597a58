package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/adledger/internal/domain"
	"github.com/iho/adledger/internal/usecase"
)

// MockAdRepository is a mock implementation of AdRepository. The default
// in-memory behavior enforces the same conditional-update semantics as
// the postgres adapter, so settlement races are observable in tests.
type MockAdRepository struct {
	mu  sync.Mutex
	ads map[string]*domain.Ad

	CreateFunc           func(ctx context.Context, ad *domain.Ad) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Ad, error)
	ListByAdvertiserFunc func(ctx context.Context, advertiserID string, limit, offset int) ([]*domain.Ad, error)
	DeleteFunc           func(ctx context.Context, id string) error
	TrySettleFunc        func(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, now time.Time) (*usecase.SettleResult, error)
}

func NewMockAdRepository() *MockAdRepository {
	return &MockAdRepository{
		ads: make(map[string]*domain.Ad),
	}
}

// Seed stores an ad directly, bypassing Create hooks.
func (m *MockAdRepository) Seed(ad *domain.Ad) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ads[ad.ID] = ad
}

func (m *MockAdRepository) Create(ctx context.Context, ad *domain.Ad) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ad)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ads[ad.ID] = ad
	return nil
}

func (m *MockAdRepository) GetByID(ctx context.Context, id string) (*domain.Ad, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ad, ok := m.ads[id]; ok {
		copied := *ad
		return &copied, nil
	}
	return nil, domain.ErrAdNotFound
}

func (m *MockAdRepository) ListByAdvertiser(ctx context.Context, advertiserID string, limit, offset int) ([]*domain.Ad, error) {
	if m.ListByAdvertiserFunc != nil {
		return m.ListByAdvertiserFunc(ctx, advertiserID, limit, offset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var ads []*domain.Ad
	for _, ad := range m.ads {
		if ad.AdvertiserID == advertiserID {
			ads = append(ads, ad)
		}
	}
	sort.Slice(ads, func(i, j int) bool { return ads[i].ID < ads[j].ID })
	return ads, nil
}

func (m *MockAdRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ads[id]; !ok {
		return domain.ErrAdNotFound
	}
	delete(m.ads, id)
	return nil
}

func (m *MockAdRepository) TrySettle(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, now time.Time) (*usecase.SettleResult, error) {
	if m.TrySettleFunc != nil {
		return m.TrySettleFunc(ctx, tx, id, amount, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ad, ok := m.ads[id]
	if !ok {
		return nil, domain.ErrAdNotFound
	}
	// Budget before activity, matching the postgres classifier: the
	// loser of the last-increment race sees the budget rejection, not
	// the deactivation the winner caused.
	if ad.RemainingBudget.LessThan(amount) {
		return nil, domain.ErrInsufficientBudget
	}
	if !ad.IsActive {
		return nil, domain.ErrAdInactive
	}
	ad.RemainingBudget = ad.RemainingBudget.Sub(amount)
	ad.ViewCount++
	ad.IsActive = ad.RemainingBudget.GreaterThanOrEqual(ad.BidPerView)
	ad.UpdatedAt = now
	return &usecase.SettleResult{
		RemainingBudget: ad.RemainingBudget,
		ViewCount:       ad.ViewCount,
		StillActive:     ad.IsActive,
	}, nil
}

// MockViewRepository is a mock implementation of ViewRepository keyed by
// (adID, deviceID).
type MockViewRepository struct {
	mu      sync.Mutex
	records map[[2]string]*domain.ViewRecord

	InsertFunc        func(ctx context.Context, tx usecase.Transaction, record *domain.ViewRecord) error
	MarkBilledFunc    func(ctx context.Context, tx usecase.Transaction, adID, deviceID string, amount decimal.Decimal) error
	ListByAdFunc      func(ctx context.Context, adID string, limit, offset int) ([]*domain.ViewRecord, error)
	StatsByViewerFunc func(ctx context.Context, adID string) ([]*domain.ViewerStat, error)
}

func NewMockViewRepository() *MockViewRepository {
	return &MockViewRepository{
		records: make(map[[2]string]*domain.ViewRecord),
	}
}

func (m *MockViewRepository) Insert(ctx context.Context, tx usecase.Transaction, record *domain.ViewRecord) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{record.AdID, record.DeviceID}
	if _, ok := m.records[key]; ok {
		return domain.ErrDuplicateView
	}
	copied := *record
	m.records[key] = &copied
	return nil
}

func (m *MockViewRepository) MarkBilled(ctx context.Context, tx usecase.Transaction, adID, deviceID string, amount decimal.Decimal) error {
	if m.MarkBilledFunc != nil {
		return m.MarkBilledFunc(ctx, tx, adID, deviceID, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if record, ok := m.records[[2]string{adID, deviceID}]; ok {
		record.Billed = true
		record.Amount = amount
	}
	return nil
}

func (m *MockViewRepository) ListByAd(ctx context.Context, adID string, limit, offset int) ([]*domain.ViewRecord, error) {
	if m.ListByAdFunc != nil {
		return m.ListByAdFunc(ctx, adID, limit, offset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var records []*domain.ViewRecord
	for _, record := range m.records {
		if record.AdID == adID {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].DeviceID < records[j].DeviceID })
	return records, nil
}

func (m *MockViewRepository) StatsByViewer(ctx context.Context, adID string) ([]*domain.ViewerStat, error) {
	if m.StatsByViewerFunc != nil {
		return m.StatsByViewerFunc(ctx, adID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	byViewer := make(map[string]*domain.ViewerStat)
	for _, record := range m.records {
		if record.AdID != adID || !record.Billed {
			continue
		}
		stat, ok := byViewer[record.ViewerID]
		if !ok {
			stat = &domain.ViewerStat{ViewerID: record.ViewerID, Earned: decimal.Zero}
			byViewer[record.ViewerID] = stat
		}
		stat.Views++
		stat.Earned = stat.Earned.Add(record.Amount)
	}
	stats := make([]*domain.ViewerStat, 0, len(byViewer))
	for _, stat := range byViewer {
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Earned.GreaterThan(stats[j].Earned) })
	return stats, nil
}

// CountBilled returns the number of billed records for an ad.
func (m *MockViewRepository) CountBilled(adID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, record := range m.records {
		if record.AdID == adID && record.Billed {
			n++
		}
	}
	return n
}

// CountAll returns the total number of records for an ad.
func (m *MockViewRepository) CountAll(adID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, record := range m.records {
		if record.AdID == adID {
			n++
		}
	}
	return n
}

// MockEarningsRepository is a mock implementation of EarningsRepository.
type MockEarningsRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.EarningsAccount

	CreditFunc func(ctx context.Context, tx usecase.Transaction, viewerID string, amount decimal.Decimal, now time.Time) (decimal.Decimal, error)
	GetFunc    func(ctx context.Context, viewerID string) (*domain.EarningsAccount, error)
}

func NewMockEarningsRepository() *MockEarningsRepository {
	return &MockEarningsRepository{
		accounts: make(map[string]*domain.EarningsAccount),
	}
}

func (m *MockEarningsRepository) Credit(ctx context.Context, tx usecase.Transaction, viewerID string, amount decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if m.CreditFunc != nil {
		return m.CreditFunc(ctx, tx, viewerID, amount, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[viewerID]
	if !ok {
		account = &domain.EarningsAccount{ViewerID: viewerID, Earnings: decimal.Zero, CreatedAt: now}
		m.accounts[viewerID] = account
	}
	account.Earnings = account.Earnings.Add(amount)
	account.UpdatedAt = now
	return account.Earnings, nil
}

func (m *MockEarningsRepository) Get(ctx context.Context, viewerID string) (*domain.EarningsAccount, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, viewerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.accounts[viewerID]; ok {
		copied := *account
		return &copied, nil
	}
	return &domain.EarningsAccount{ViewerID: viewerID, Earnings: decimal.Zero}, nil
}

// TotalEarnings sums all balances.
func (m *MockEarningsRepository) TotalEarnings() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, account := range m.accounts {
		total = total.Add(account.Earnings)
	}
	return total
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.Mutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var unpublished []*domain.OutboxEvent
	for _, event := range m.events {
		if !event.Published {
			unpublished = append(unpublished, event)
		}
		if len(unpublished) == limit {
			break
		}
	}
	return unpublished, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, event := range m.events {
		if event.ID == id {
			event.Published = true
			event.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, event := range m.events {
		if !event.Published || !event.CreatedAt.Before(before) {
			kept = append(kept, event)
		}
	}
	m.events = kept
	return nil
}

// Events returns a snapshot of recorded events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]*domain.OutboxEvent, len(m.events))
	copy(snapshot, m.events)
	return snapshot
}

// MockDeviceSeenCache is a mock implementation of DeviceSeenCache.
type MockDeviceSeenCache struct {
	mu   sync.Mutex
	seen map[string]bool

	SeenFunc     func(ctx context.Context, adID, deviceID string) (bool, error)
	MarkSeenFunc func(ctx context.Context, adID, deviceID string) error
}

func NewMockDeviceSeenCache() *MockDeviceSeenCache {
	return &MockDeviceSeenCache{seen: make(map[string]bool)}
}

func (m *MockDeviceSeenCache) Seen(ctx context.Context, adID, deviceID string) (bool, error) {
	if m.SeenFunc != nil {
		return m.SeenFunc(ctx, adID, deviceID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[adID+":"+deviceID], nil
}

func (m *MockDeviceSeenCache) MarkSeen(ctx context.Context, adID, deviceID string) error {
	if m.MarkSeenFunc != nil {
		return m.MarkSeenFunc(ctx, adID, deviceID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[adID+":"+deviceID] = true
	return nil
}

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockTransactionManager hands out no-op transactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockRetrier runs the operation once without retries.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return "id-" + strconv.Itoa(m.next)
}
