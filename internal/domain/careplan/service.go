package careplan

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haircarepro/server/internal/infra/mail"
	apperrors "github.com/haircarepro/server/pkg/errors"
	"github.com/haircarepro/server/pkg/util"
	"github.com/haircarepro/server/pkg/validate"
)

// Service exposes the care plan pipeline.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error)
	List(ctx context.Context, ownerID int64) ([]PlanView, error)
	Artifact(ctx context.Context, name string) (io.ReadCloser, error)
}

const (
	artifactPublicPrefix = "/api/v1/artifacts/"
	artifactMimeType     = "application/pdf"

	deliverySubject      = "Your HairCare Pro Prescription"
	deliveryBodyTemplate = "Hi %s,\n\nAttached is your personalized hair care prescription.\n\nTake care,\nHairCare Pro"
)

var artifactNamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+_[0-9]+_[0-9]+\.pdf$`)

type service struct {
	cfg       Config
	generator Generator
	renderer  Renderer
	repo      Repository
	artifacts ArtifactStore
	cache     Cache
	mailer    Mailer
	users     UserDirectory
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires up the care plan domain.
func NewService(cfg Config, generator Generator, renderer Renderer, repo Repository, artifacts ArtifactStore, cache Cache, mailer Mailer, users UserDirectory, logger *slog.Logger) Service {
	if cfg.ArtifactPrefix == "" {
		cfg.ArtifactPrefix = "careplan"
	}
	return &service{
		cfg:       cfg,
		generator: generator,
		renderer:  renderer,
		repo:      repo,
		artifacts: artifacts,
		cache:     cache,
		mailer:    mailer,
		users:     users,
		logger:    logger.With("component", "careplan.service"),
		now:       util.NowUTC,
	}
}

// Submit runs the full pipeline: generate, normalize, persist, render, store
// the artifact and email it to the owner. Each submission produces exactly one
// document and one outbound message.
func (s *service) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if len(req.Answers) == 0 {
		return SubmitResult{}, apperrors.Wrap("invalid_input", "survey answers cannot be empty", nil)
	}
	if err := validateReminderDays(req.ReminderDays); err != nil {
		return SubmitResult{}, apperrors.Wrap("invalid_input", err.Error(), nil)
	}

	owner, found, err := s.users.GetByID(ctx, req.OwnerID)
	if err != nil {
		return SubmitResult{}, apperrors.Wrap("plan_error", "failed to resolve owner", err)
	}
	if !found {
		return SubmitResult{}, apperrors.Wrap("user_not_found", "owner not found", nil)
	}
	// Checked up front so a bad address never costs a generation call.
	if !validate.Email(owner.Email) {
		return SubmitResult{}, apperrors.Wrap("invalid_email", "invalid or missing email, re-login or contact support", nil)
	}

	raw, err := s.generate(ctx, req.Answers)
	if err != nil {
		return SubmitResult{}, apperrors.Wrap("generation_error", "care plan generation failed", err)
	}

	plan, warnings := Normalize(raw)
	for _, warning := range warnings {
		s.logger.Warn("normalize diagnostic", "owner_id", req.OwnerID, "detail", warning)
	}

	now := s.now()
	record := CarePlan{
		ID:           uuid.New(),
		OwnerID:      req.OwnerID,
		SurveyInput:  req.Answers,
		Plan:         plan,
		ReminderDays: req.ReminderDays,
		CreatedAt:    now,
	}
	record.ArtifactKey = fmt.Sprintf("%s_%d_%d.pdf", s.cfg.ArtifactPrefix, req.OwnerID, now.UnixMilli())

	if err := s.repo.Create(ctx, record); err != nil {
		return SubmitResult{}, apperrors.Wrap("plan_error", "failed to save care plan", err)
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(plan, owner.Nickname, &buf); err != nil {
		return SubmitResult{}, apperrors.Wrap("render_error", "failed to render prescription document", err)
	}
	if _, err := s.artifacts.Put(ctx, record.ArtifactKey, buf.Bytes(), artifactMimeType); err != nil {
		return SubmitResult{}, apperrors.Wrap("render_error", "failed to store prescription document", err)
	}

	msg := mail.Message{
		To:      owner.Email,
		Subject: deliverySubject,
		Body:    fmt.Sprintf(deliveryBodyTemplate, owner.Nickname),
		Attachment: &mail.Attachment{
			Filename: record.ArtifactKey,
			Content:  buf.Bytes(),
			MimeType: artifactMimeType,
		},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return SubmitResult{}, apperrors.Wrap("delivery_error", "error sending email", err)
	}
	s.logger.Info("care plan delivered", "plan_id", record.ID, "owner_id", req.OwnerID, "artifact", record.ArtifactKey)

	return SubmitResult{
		PlanID:       record.ID,
		Plan:         plan,
		ArtifactPath: artifactPublicPrefix + record.ArtifactKey,
	}, nil
}

// generate consults the cache before calling the external service. Cache
// failures degrade to a live call, never to a submission failure.
func (s *service) generate(ctx context.Context, answers map[string]string) (RawPlan, error) {
	key := surveyHash(answers)
	if cached, hit, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("generation cache lookup failed", "error", err)
	} else if hit {
		s.logger.Info("generation cache hit", "key", key)
		return cached, nil
	}

	raw, err := s.generator.Generate(ctx, answers)
	if err != nil {
		return RawPlan{}, err
	}
	if raw.Error != "" {
		return RawPlan{}, fmt.Errorf("generation service reported: %s", raw.Error)
	}
	if err := s.cache.Save(ctx, key, raw, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("generation cache save failed", "error", err)
	}
	return raw, nil
}

// List returns the caller's plans, newest first per repository ordering.
func (s *service) List(ctx context.Context, ownerID int64) ([]PlanView, error) {
	plans, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Wrap("plan_error", "failed to list care plans", err)
	}
	views := make([]PlanView, 0, len(plans))
	for _, plan := range plans {
		view := PlanView{
			ID:           plan.ID,
			Plan:         plan.Plan,
			ReminderDays: plan.ReminderDays,
			CreatedAt:    plan.CreatedAt,
		}
		if plan.ArtifactKey != "" {
			view.ArtifactPath = artifactPublicPrefix + plan.ArtifactKey
		}
		views = append(views, view)
	}
	return views, nil
}

// Artifact streams a stored document by file name.
func (s *service) Artifact(ctx context.Context, name string) (io.ReadCloser, error) {
	if !artifactNamePattern.MatchString(name) {
		return nil, apperrors.Wrap("invalid_input", "invalid artifact name", nil)
	}
	reader, err := s.artifacts.Get(ctx, name)
	if err != nil {
		return nil, apperrors.Wrap("artifact_not_found", "artifact not found", err)
	}
	return reader, nil
}

func validateReminderDays(days []int) error {
	for _, day := range days {
		if day < 0 || day > 6 {
			return fmt.Errorf("reminder day %d out of range 0..6", day)
		}
	}
	return nil
}

// surveyHash builds a deterministic key over the survey answers so identical
// submissions reuse the cached generation payload.
func surveyHash(answers map[string]string) string {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var builder strings.Builder
	for _, k := range keys {
		builder.WriteString(k)
		builder.WriteByte('=')
		builder.WriteString(answers[k])
		builder.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(builder.String()))
	return hex.EncodeToString(sum[:])
}
