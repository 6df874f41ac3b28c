package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is where journal entries are kept.
type Store interface {
	// Migrate creates or updates the journal table.
	Migrate(ctx context.Context) error

	// Append records one entry. An empty ID is filled in.
	Append(ctx context.Context, e *Entry) error

	// ListByExecutor returns an executor's entries in dispatch order.
	// limit <= 0 means no limit.
	ListByExecutor(ctx context.Context, executorID string, limit int) ([]*Entry, error)

	// CountByStatus returns the number of entries per status for an executor.
	CountByStatus(ctx context.Context, executorID string) (map[Status]int64, error)

	// Prune deletes entries created before cutoff and returns how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// GormStore implements Store using GORM.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a new GORM-backed journal store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// NewGormStoreWithPool creates a GORM-backed store after applying pool
// settings to db. DefaultPoolConfig values apply unless overridden.
func NewGormStoreWithPool(db *gorm.DB, opts ...PoolOption) (*GormStore, error) {
	if err := ConfigurePool(db, opts...); err != nil {
		return nil, err
	}
	return NewGormStore(db), nil
}

// Migrate creates the journal table.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Entry{})
}

// Append records one entry.
func (s *GormStore) Append(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(e).Error
}

// ListByExecutor returns an executor's entries ordered by sequence number.
func (s *GormStore) ListByExecutor(ctx context.Context, executorID string, limit int) ([]*Entry, error) {
	var entries []*Entry
	q := s.db.WithContext(ctx).
		Where("executor_id = ?", executorID).
		Order("seq ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByStatus returns per-status entry counts for an executor.
func (s *GormStore) CountByStatus(ctx context.Context, executorID string) (map[Status]int64, error) {
	var rows []struct {
		Status Status
		Count  int64
	}
	err := s.db.WithContext(ctx).
		Model(&Entry{}).
		Select("status, count(*) as count").
		Where("executor_id = ?", executorID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// Prune deletes entries created before cutoff.
func (s *GormStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&Entry{})
	return result.RowsAffected, result.Error
}
