package pg

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/progim/core/alert"
)

// alertRepo implements alert.Repository on PostgreSQL. The config table
// holds at most one row; the log table is pruned down to alert.LogCap on
// every append.
type alertRepo struct {
	db *sqlx.DB
}

var _ alert.Repository = (*alertRepo)(nil)

func NewAlertRepository(db *sqlx.DB) alert.Repository {
	return &alertRepo{db: db}
}

func (repo *alertRepo) GetConfig(ctx context.Context) (alert.Config, error) {
	var cfg alert.Config
	const q = `SELECT email, receive_overdue_alerts, receive_upcoming_alerts, alert_days_before FROM alert_config`
	err := repo.db.GetContext(ctx, &cfg, q)
	if isNoRows(err) {
		return alert.Config{}, alert.ErrNoConfig
	}
	return cfg, errors.Wrap(err, "getting alert config")
}

func (repo *alertRepo) SaveConfig(ctx context.Context, cfg alert.Config) error {
	const q = `INSERT INTO alert_config (id, email, receive_overdue_alerts, receive_upcoming_alerts, alert_days_before)
VALUES (TRUE, $1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET email = EXCLUDED.email,
    receive_overdue_alerts = EXCLUDED.receive_overdue_alerts,
    receive_upcoming_alerts = EXCLUDED.receive_upcoming_alerts,
    alert_days_before = EXCLUDED.alert_days_before`
	_, err := repo.db.ExecContext(ctx, q, cfg.Email, cfg.ReceiveOverdueAlerts, cfg.ReceiveUpcomingAlerts, cfg.AlertDaysBefore)
	return errors.Wrap(err, "saving alert config")
}

func (repo *alertRepo) ListLog(ctx context.Context) ([]alert.LogEntry, error) {
	entries := []alert.LogEntry{}
	err := repo.db.SelectContext(ctx, &entries, "SELECT * FROM alert_log ORDER BY created_at DESC LIMIT $1", alert.LogCap)
	return entries, errors.Wrap(err, "listing alert log")
}

func (repo *alertRepo) AppendLog(ctx context.Context, entry alert.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO alert_log (id, type, email, subject, status, error, created_at)
VALUES (:id, :type, :email, :subject, :status, :error, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, entry); err != nil {
		return errors.Wrap(err, "appending alert log")
	}

	const prune = `DELETE FROM alert_log
WHERE id NOT IN (SELECT id FROM alert_log ORDER BY created_at DESC LIMIT $1)`
	_, err := repo.db.ExecContext(ctx, prune, alert.LogCap)
	return errors.Wrap(err, "pruning alert log")
}
