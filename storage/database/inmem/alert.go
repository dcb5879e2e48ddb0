package inmem

import (
	"context"
	"time"

	"github.com/trezcool/progim/core/alert"
)

type alertRepo struct {
	db *DB
}

var _ alert.Repository = (*alertRepo)(nil)

func NewAlertRepository(db *DB) alert.Repository {
	return &alertRepo{db: db}
}

func (repo *alertRepo) GetConfig(ctx context.Context) (alert.Config, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if repo.db.alertConfig == nil {
		return alert.Config{}, alert.ErrNoConfig
	}
	return *repo.db.alertConfig, nil
}

func (repo *alertRepo) SaveConfig(ctx context.Context, cfg alert.Config) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.alertConfig = &cfg
	return nil
}

func (repo *alertRepo) ListLog(ctx context.Context) ([]alert.LogEntry, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return append([]alert.LogEntry{}, repo.db.alertLog...), nil
}

func (repo *alertRepo) AppendLog(ctx context.Context, entry alert.LogEntry) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if entry.ID == "" {
		entry.ID = newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	repo.db.alertLog = append([]alert.LogEntry{entry}, repo.db.alertLog...)
	if len(repo.db.alertLog) > alert.LogCap {
		repo.db.alertLog = repo.db.alertLog[:alert.LogCap]
	}
	return nil
}
