package alert

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/progim/core"
	"github.com/trezcool/progim/core/tracking"
)

type Service struct {
	repo    Repository
	tracker *tracking.Service
	mailSvc core.EmailService
	logger  core.Logger
}

func NewService(repo Repository, tracker *tracking.Service, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		tracker: tracker,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

// GetConfig returns the saved recipient config, or the defaults when none
// has been saved yet.
func (svc *Service) GetConfig(ctx context.Context) (Config, error) {
	cfg, err := svc.repo.GetConfig(ctx)
	if errors.Cause(err) == ErrNoConfig {
		return DefaultConfig(), nil
	}
	return cfg, err
}

func (svc *Service) SaveConfig(ctx context.Context, cfg Config) error {
	return svc.repo.SaveConfig(ctx, cfg)
}

func (svc *Service) Log(ctx context.Context) ([]LogEntry, error) {
	return svc.repo.ListLog(ctx)
}

// SendTest sends a verification email to the given address.
func (svc *Service) SendTest(ctx context.Context, email string) error {
	return svc.send(ctx, TypeTest, email, "Alerta de Prueba", "test-alert", map[string]interface{}{
		"Date": time.Now().UTC().Format(time.RFC1123),
	})
}

// SendOverdue notifies that an activity's end date has passed.
func (svc *Service) SendOverdue(ctx context.Context, email, activityName string, daysOverdue int) error {
	subject := fmt.Sprintf("Actividad Vencida: %s", activityName)
	return svc.send(ctx, TypeOverdue, email, subject, "overdue-alert", map[string]interface{}{
		"ActivityName": activityName,
		"DaysOverdue":  daysOverdue,
	})
}

// SendUpcoming notifies that an activity is due within the configured
// window.
func (svc *Service) SendUpcoming(ctx context.Context, email, activityName string, daysRemaining int) error {
	subject := fmt.Sprintf("Próximo Vencimiento: %s", activityName)
	return svc.send(ctx, TypeUpcoming, email, subject, "upcoming-alert", map[string]interface{}{
		"ActivityName":  activityName,
		"DaysRemaining": daysRemaining,
	})
}

// send renders the templated message, hands it to the email service and
// records the attempt in the capped send log.
func (svc *Service) send(ctx context.Context, typ, email, subject, templateName string, data map[string]interface{}) error {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: email}},
		Subject:      subject,
		TemplateName: templateName,
		TemplateData: data,
	}
	entry := LogEntry{
		Type:      typ,
		Email:     email,
		Subject:   subject,
		Status:    StatusSent,
		CreatedAt: time.Now().UTC(),
	}

	sendErr := msg.Render()
	if sendErr != nil {
		entry.Status = StatusError
		entry.Error = sendErr.Error()
		svc.logger.Error(fmt.Sprintf("rendering %s alert: %v", typ, sendErr), sendErr)
	} else {
		svc.mailSvc.SendMessages(msg)
	}

	if err := svc.repo.AppendLog(ctx, entry); err != nil {
		svc.logger.Error(fmt.Sprintf("recording %s alert: %v", typ, err), err)
	}
	return sendErr
}

// Scan classifies every activity against the recipient config and sends
// the enabled overdue/upcoming alerts. Failures are logged and the scan
// continues; there is no delivery guarantee beyond the relay's accept.
func (svc *Service) Scan(ctx context.Context) error {
	cfg, err := svc.GetConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "loading alert config")
	}
	if !cfg.ReceiveOverdueAlerts && !cfg.ReceiveUpcomingAlerts {
		return nil
	}

	activities, err := svc.tracker.Activities(ctx)
	if err != nil {
		return errors.Wrap(err, "loading activities")
	}
	subs, err := svc.tracker.SubActivities(ctx, "")
	if err != nil {
		return errors.Wrap(err, "loading sub-activities")
	}
	subsByActivity := tracking.GroupSubActivities(subs)

	for _, a := range activities {
		if a.EndDate == "" || tracking.IsCompletedState(a.State) {
			continue
		}
		effective := tracking.EffectivePercentage(a, subsByActivity[a.ID])
		if effective >= 100 {
			continue
		}
		remaining := tracking.DaysRemaining(a.EndDate)
		switch {
		case remaining < 0 && cfg.ReceiveOverdueAlerts:
			if err := svc.SendOverdue(ctx, cfg.Email, a.Name, -remaining); err != nil {
				svc.logger.Error(fmt.Sprintf("sending overdue alert for %q: %v", a.Name, err), err)
			}
		case remaining > 0 && remaining <= cfg.AlertDaysBefore && cfg.ReceiveUpcomingAlerts:
			if err := svc.SendUpcoming(ctx, cfg.Email, a.Name, remaining); err != nil {
				svc.logger.Error(fmt.Sprintf("sending upcoming alert for %q: %v", a.Name, err), err)
			}
		}
	}
	return nil
}
