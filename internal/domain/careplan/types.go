package careplan

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CarePlan is one survey submission together with its generated plan. The
// survey input and the plan are immutable after creation; only the reminder
// bookkeeping changes afterwards.
type CarePlan struct {
	ID               uuid.UUID         `json:"id"`
	OwnerID          int64             `json:"ownerId"`
	SurveyInput      map[string]string `json:"surveyInput"`
	Plan             CanonicalPlan     `json:"plan"`
	ArtifactKey      string            `json:"artifactKey"`
	ReminderDays     []int             `json:"reminderDays"`
	LastReminderSent *time.Time        `json:"lastReminderSent,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// Ingredient pairs a product name with usage guidance.
type Ingredient struct {
	Name     string `json:"name"`
	HowToUse string `json:"howToUse"`
}

// CanonicalPlan is the shape-agnostic plan representation every downstream
// component consumes.
type CanonicalPlan struct {
	Ingredients   []Ingredient      `json:"ingredients"`
	WashFrequency string            `json:"washFrequency"`
	Tips          []string          `json:"tips"`
	Instructions  map[string]string `json:"instructions"`
	Resources     []string          `json:"resources"`
	RawResponse   json.RawMessage   `json:"rawResponse,omitempty"`
}

// RawPlan mirrors the generation service payload before normalization.
// Ingredients stays raw JSON because the service is known to answer with
// either an array of objects or an array of bare name strings.
type RawPlan struct {
	Ingredients   json.RawMessage   `json:"ingredients"`
	WashFrequency *string           `json:"washFrequency"`
	Tips          []*string         `json:"tips"`
	Instructions  map[string]string `json:"instructions"`
	Resources     []string          `json:"resources"`
	RawResponse   json.RawMessage   `json:"rawResponse,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// SubmitRequest captures a survey submission.
type SubmitRequest struct {
	OwnerID      int64
	Answers      map[string]string
	ReminderDays []int
}

// SubmitResult is returned to the submitting user.
type SubmitResult struct {
	PlanID       uuid.UUID     `json:"planId"`
	Plan         CanonicalPlan `json:"plan"`
	ArtifactPath string        `json:"artifactPath"`
}

// PlanView is the dashboard projection of a stored plan.
type PlanView struct {
	ID           uuid.UUID     `json:"id"`
	Plan         CanonicalPlan `json:"plan"`
	ArtifactPath string        `json:"artifactPath,omitempty"`
	ReminderDays []int         `json:"reminderDays"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Config drives the submission pipeline.
type Config struct {
	ArtifactPrefix string
	CacheTTL       time.Duration
}
