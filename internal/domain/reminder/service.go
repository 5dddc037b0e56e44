package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haircarepro/server/internal/domain/auth"
	"github.com/haircarepro/server/internal/domain/careplan"
	"github.com/haircarepro/server/internal/infra/mail"
	apperrors "github.com/haircarepro/server/pkg/errors"
	"github.com/haircarepro/server/pkg/util"
	"github.com/haircarepro/server/pkg/validate"
)

// Service runs one reminder batch per invocation. The external trigger is
// expected to fire it once a day and not overlap runs.
type Service interface {
	Run(ctx context.Context) (Report, error)
}

// PlanSource selects and stamps due care plans.
type PlanSource interface {
	ListDue(ctx context.Context, day time.Weekday, olderThan time.Time) ([]careplan.CarePlan, error)
	MarkReminded(ctx context.Context, id uuid.UUID, sentAt, threshold time.Time) (bool, error)
}

// UserDirectory resolves plan owners.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (auth.User, bool, error)
}

// Mailer delivers one outbound message per call.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Config drives scheduler behavior.
type Config struct {
	// Window is how long a sent reminder suppresses the next one.
	Window time.Duration
}

// Report summarizes one scheduler run.
type Report struct {
	Considered int `json:"count"`
	Sent       int `json:"sent"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

const (
	reminderSubject      = "HairCare Pro Reminder"
	reminderBodyTemplate = "Hi %s,\n\nThis is a reminder to follow your hair care plan!\n\nTake care,\nHairCare Pro"
)

type service struct {
	cfg    Config
	plans  PlanSource
	users  UserDirectory
	mailer Mailer
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires up the reminder domain.
func NewService(cfg Config, plans PlanSource, users UserDirectory, mailer Mailer, logger *slog.Logger) Service {
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	return &service{
		cfg:    cfg,
		plans:  plans,
		users:  users,
		mailer: mailer,
		logger: logger.With("component", "reminder.service"),
		now:    util.NowUTC,
	}
}

// Run selects every due plan with a single query, then works through them one
// by one. A plan failing never aborts the batch; only a failing selection
// query fails the run.
func (s *service) Run(ctx context.Context) (Report, error) {
	now := s.now()
	day := now.Weekday()
	threshold := now.Add(-s.cfg.Window)

	plans, err := s.plans.ListDue(ctx, day, threshold)
	if err != nil {
		return Report{}, apperrors.Wrap("reminder_query_error", "failed to select due care plans", err)
	}

	report := Report{Considered: len(plans)}
	for _, plan := range plans {
		owner, found, err := s.users.GetByID(ctx, plan.OwnerID)
		if err != nil || !found {
			report.Skipped++
			s.logger.Warn("reminder skipped, owner unresolved", "plan_id", plan.ID, "owner_id", plan.OwnerID, "error", err)
			continue
		}
		if !validate.Email(owner.Email) {
			report.Skipped++
			s.logger.Warn("reminder skipped, invalid or missing email", "plan_id", plan.ID, "owner_id", plan.OwnerID)
			continue
		}

		msg := mail.Message{
			To:      owner.Email,
			Subject: reminderSubject,
			Body:    fmt.Sprintf(reminderBodyTemplate, owner.Email),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			// Left unstamped so the plan is retried next run.
			report.Failed++
			s.logger.Warn("reminder delivery failed", "plan_id", plan.ID, "owner_id", plan.OwnerID, "error", err)
			continue
		}

		applied, err := s.plans.MarkReminded(ctx, plan.ID, now, threshold)
		if err != nil {
			report.Failed++
			s.logger.Error("reminder stamp failed", "plan_id", plan.ID, "error", err)
			continue
		}
		if !applied {
			s.logger.Warn("reminder already stamped by a concurrent run", "plan_id", plan.ID)
		}
		report.Sent++
		s.logger.Info("reminder sent", "plan_id", plan.ID, "owner_id", plan.OwnerID)
	}

	s.logger.Info("reminder run complete", "considered", report.Considered, "sent", report.Sent, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}
