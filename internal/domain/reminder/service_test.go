package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/haircarepro/server/internal/domain/auth"
	"github.com/haircarepro/server/internal/domain/careplan"
	"github.com/haircarepro/server/internal/infra/mail"
	apperrors "github.com/haircarepro/server/pkg/errors"
)

type stubPlanSource struct {
	due     []careplan.CarePlan
	listErr error

	stamped    []uuid.UUID
	markErr    error
	markResult bool

	listedDay       time.Weekday
	listedOlderThan time.Time
}

func (s *stubPlanSource) ListDue(ctx context.Context, day time.Weekday, olderThan time.Time) ([]careplan.CarePlan, error) {
	s.listedDay = day
	s.listedOlderThan = olderThan
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.due, nil
}

func (s *stubPlanSource) MarkReminded(ctx context.Context, id uuid.UUID, sentAt, threshold time.Time) (bool, error) {
	if s.markErr != nil {
		return false, s.markErr
	}
	s.stamped = append(s.stamped, id)
	return s.markResult, nil
}

type stubUsers struct {
	users map[int64]auth.User
}

func (s *stubUsers) GetByID(ctx context.Context, id int64) (auth.User, bool, error) {
	user, ok := s.users[id]
	return user, ok, nil
}

type stubMailer struct {
	sent   []mail.Message
	failTo string
}

func (s *stubMailer) Send(ctx context.Context, msg mail.Message) error {
	if s.failTo != "" && msg.To == s.failTo {
		return errors.New("smtp refused")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func duePlan(ownerID int64) careplan.CarePlan {
	return careplan.CarePlan{ID: uuid.New(), OwnerID: ownerID, ReminderDays: []int{2}}
}

func TestRun_SendsAndStamps(t *testing.T) {
	plans := &stubPlanSource{due: []careplan.CarePlan{duePlan(1), duePlan(2)}, markResult: true}
	users := &stubUsers{users: map[int64]auth.User{
		1: {ID: 1, Email: "one@example.com"},
		2: {ID: 2, Email: "two@example.com"},
	}}
	mailer := &stubMailer{}
	svc := NewService(Config{Window: 24 * time.Hour}, plans, users, mailer, testLogger())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, Report{Considered: 2, Sent: 2}, report)
	require.Len(t, mailer.sent, 2)
	require.Len(t, plans.stamped, 2)

	msg := mailer.sent[0]
	require.Equal(t, "one@example.com", msg.To)
	require.Equal(t, "HairCare Pro Reminder", msg.Subject)
	require.Contains(t, msg.Body, "This is a reminder to follow your hair care plan!")
	require.Nil(t, msg.Attachment)
}

func TestRun_QueryUsesCurrentWeekdayAndWindow(t *testing.T) {
	plans := &stubPlanSource{markResult: true}
	svc := NewService(Config{Window: 24 * time.Hour}, plans, &stubUsers{}, &stubMailer{}, testLogger())

	before := time.Now().UTC()
	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	after := time.Now().UTC()

	require.Equal(t, before.Weekday(), plans.listedDay)
	require.False(t, plans.listedOlderThan.Before(before.Add(-24*time.Hour)))
	require.False(t, plans.listedOlderThan.After(after.Add(-24*time.Hour)))
}

func TestRun_QueryFailureFailsRun(t *testing.T) {
	plans := &stubPlanSource{listErr: errors.New("db down")}
	svc := NewService(Config{}, plans, &stubUsers{}, &stubMailer{}, testLogger())

	_, err := svc.Run(context.Background())
	require.True(t, apperrors.IsCode(err, "reminder_query_error"))
}

func TestRun_SkipsUnresolvedOwner(t *testing.T) {
	plans := &stubPlanSource{due: []careplan.CarePlan{duePlan(99)}, markResult: true}
	svc := NewService(Config{}, plans, &stubUsers{}, &stubMailer{}, testLogger())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, Report{Considered: 1, Skipped: 1}, report)
	require.Empty(t, plans.stamped)
}

func TestRun_SkipsInvalidEmailWithoutStamping(t *testing.T) {
	plans := &stubPlanSource{due: []careplan.CarePlan{duePlan(1)}, markResult: true}
	users := &stubUsers{users: map[int64]auth.User{1: {ID: 1, Email: "not-an-email"}}}
	mailer := &stubMailer{}
	svc := NewService(Config{}, plans, users, mailer, testLogger())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, Report{Considered: 1, Skipped: 1}, report)
	require.Empty(t, mailer.sent)
	// An unstamped plan stays eligible for the next run.
	require.Empty(t, plans.stamped)
}

func TestRun_DeliveryFailureDoesNotAbortBatch(t *testing.T) {
	planA := duePlan(1)
	planB := duePlan(2)
	plans := &stubPlanSource{due: []careplan.CarePlan{planA, planB}, markResult: true}
	users := &stubUsers{users: map[int64]auth.User{
		1: {ID: 1, Email: "one@example.com"},
		2: {ID: 2, Email: "two@example.com"},
	}}
	mailer := &stubMailer{failTo: "one@example.com"}
	svc := NewService(Config{}, plans, users, mailer, testLogger())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, Report{Considered: 2, Sent: 1, Failed: 1}, report)
	require.Equal(t, []uuid.UUID{planB.ID}, plans.stamped)
}

func TestRun_StampFailureCountsAsFailed(t *testing.T) {
	plans := &stubPlanSource{due: []careplan.CarePlan{duePlan(1)}, markErr: errors.New("db down")}
	users := &stubUsers{users: map[int64]auth.User{1: {ID: 1, Email: "one@example.com"}}}
	svc := NewService(Config{}, plans, users, &stubMailer{}, testLogger())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, Report{Considered: 1, Failed: 1}, report)
}

func TestRun_ConcurrentStampStillCountsSent(t *testing.T) {
	plans := &stubPlanSource{due: []careplan.CarePlan{duePlan(1)}, markResult: false}
	users := &stubUsers{users: map[int64]auth.User{1: {ID: 1, Email: "one@example.com"}}}
	svc := NewService(Config{}, plans, users, &stubMailer{}, testLogger())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, Report{Considered: 1, Sent: 1}, report)
}
