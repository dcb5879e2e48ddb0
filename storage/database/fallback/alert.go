package fallback

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/progim/core"
	"github.com/trezcool/progim/core/alert"
)

type alertRepo struct {
	primary alert.Repository
	local   alert.Repository
	logger  core.Logger
}

var _ alert.Repository = (*alertRepo)(nil)

func NewAlertRepository(primary, local alert.Repository, logger core.Logger) alert.Repository {
	return &alertRepo{primary: primary, local: local, logger: logger}
}

func (repo *alertRepo) warn(op string, err error) {
	repo.logger.Warn("falling back to local store", "op", op, "error", err)
}

func (repo *alertRepo) GetConfig(ctx context.Context) (alert.Config, error) {
	cfg, err := repo.primary.GetConfig(ctx)
	if err != nil {
		if errors.Cause(err) != alert.ErrNoConfig {
			repo.warn("GetConfig", err)
		}
		return repo.local.GetConfig(ctx)
	}
	return cfg, nil
}

func (repo *alertRepo) SaveConfig(ctx context.Context, cfg alert.Config) error {
	if err := repo.primary.SaveConfig(ctx, cfg); err != nil {
		repo.warn("SaveConfig", err)
	}
	// the config is a single document; mirroring it keeps fallback reads
	// current
	return repo.local.SaveConfig(ctx, cfg)
}

func (repo *alertRepo) ListLog(ctx context.Context) ([]alert.LogEntry, error) {
	entries, err := repo.primary.ListLog(ctx)
	if err != nil || len(entries) == 0 {
		if err != nil {
			repo.warn("ListLog", err)
		}
		return repo.local.ListLog(ctx)
	}
	return entries, nil
}

func (repo *alertRepo) AppendLog(ctx context.Context, entry alert.LogEntry) error {
	if err := repo.primary.AppendLog(ctx, entry); err != nil {
		repo.warn("AppendLog", err)
		return repo.local.AppendLog(ctx, entry)
	}
	return nil
}
