package alert

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/progim/core"
)

// Alert email types
const (
	TypeTest     = "test"
	TypeOverdue  = "overdue"
	TypeUpcoming = "upcoming"
)

// Send statuses
const (
	StatusSent  = "sent"
	StatusError = "error"
)

// LogCap is how many send-log entries are retained; older ones are
// dropped.
const LogCap = 10

var ErrNoConfig = errors.New("alert config not set")

// Config is the single alert-recipient configuration.
type Config struct {
	Email                 string `json:"email" db:"email" validate:"required,email"`
	ReceiveOverdueAlerts  bool   `json:"receive_overdue_alerts" db:"receive_overdue_alerts"`
	ReceiveUpcomingAlerts bool   `json:"receive_upcoming_alerts" db:"receive_upcoming_alerts"`
	AlertDaysBefore       int    `json:"alert_days_before" db:"alert_days_before" validate:"min=1,max=30"`
}

func (c *Config) Validate() error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return core.Validate.Struct(c)
}

// DefaultConfig is used until a recipient saves their own.
func DefaultConfig() Config {
	return Config{
		Email:                 core.Conf.DefaultFromEmail.Address,
		ReceiveOverdueAlerts:  true,
		ReceiveUpcomingAlerts: true,
		AlertDaysBefore:       3,
	}
}

// LogEntry records one alert send attempt.
type LogEntry struct {
	ID        string    `json:"id" db:"id"`
	Type      string    `json:"type" db:"type"`
	Email     string    `json:"email" db:"email"`
	Subject   string    `json:"subject" db:"subject"`
	Status    string    `json:"status" db:"status"`
	Error     string    `json:"error,omitempty" db:"error"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Repository interface {
	// GetConfig returns ErrNoConfig when no config has been saved yet.
	GetConfig(ctx context.Context) (Config, error)
	SaveConfig(ctx context.Context, cfg Config) error
	// ListLog returns entries newest first, at most LogCap of them.
	ListLog(ctx context.Context) ([]LogEntry, error)
	// AppendLog stores the entry and prunes anything beyond LogCap.
	AppendLog(ctx context.Context, entry LogEntry) error
}
