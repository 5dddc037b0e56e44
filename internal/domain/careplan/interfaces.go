package careplan

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/haircarepro/server/internal/domain/auth"
	"github.com/haircarepro/server/internal/infra/mail"
)

// Generator calls the external generation service with the survey answers and
// returns the payload exactly as sent, tagged raw. No retries, no shaping.
type Generator interface {
	Generate(ctx context.Context, survey map[string]string) (RawPlan, error)
}

// Renderer writes the printable document for a canonical plan into sink.
// A nil error means the document was finalized and the sink accepted it.
type Renderer interface {
	Render(plan CanonicalPlan, ownerName string, sink io.Writer) error
}

// Repository persists care plans.
type Repository interface {
	Create(ctx context.Context, plan CarePlan) error
	ListByOwner(ctx context.Context, ownerID int64) ([]CarePlan, error)
	// ListDue selects, in one query, every plan whose reminder days include
	// day and whose last reminder is absent or older than olderThan.
	ListDue(ctx context.Context, day time.Weekday, olderThan time.Time) ([]CarePlan, error)
	// MarkReminded stamps lastReminderSent only while it is still absent or
	// older than threshold, reporting whether the update applied.
	MarkReminded(ctx context.Context, id uuid.UUID, sentAt, threshold time.Time) (bool, error)
}

// StoredArtifact describes a persisted document.
type StoredArtifact struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// ArtifactStore keeps rendered documents.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredArtifact, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Cache remembers raw generation payloads for identical survey answers.
type Cache interface {
	Get(ctx context.Context, key string) (RawPlan, bool, error)
	Save(ctx context.Context, key string, plan RawPlan, ttl time.Duration) error
}

// Mailer delivers one outbound message per call.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// UserDirectory resolves plan owners.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (auth.User, bool, error)
}
