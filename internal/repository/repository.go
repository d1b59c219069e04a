// Package repository declares the storage interfaces the rest of the
// application programs against. The sqlite subpackage is the only
// implementation; tests substitute in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/gamnamu1/python-code-explainer/internal/model"
)

// UserUpsert carries the fields of one auth-callback upsert.
//
// Pointer fields distinguish "not supplied" (nil, leave the stored value
// alone on conflict) from "supplied as empty" (non-nil pointing at "").
// OpenID is always required; LastSignedIn is always refreshed.
type UserUpsert struct {
	OpenID      string
	Name        *string
	Email       *string
	LoginMethod *string
	Role        *model.Role
	// LastSignedIn overrides the refresh timestamp when non-zero.
	// Zero means "now". Exists mainly so tests can pin timestamps.
	LastSignedIn time.Time
}

type UserRepository interface {
	// Upsert inserts a new user or updates the supplied fields of an
	// existing one, keyed by OpenID. Always refreshes last_signed_in.
	Upsert(ctx context.Context, params UserUpsert) error
	// GetByOpenID returns the user or (nil, nil) when absent.
	GetByOpenID(ctx context.Context, openID string) (*model.User, error)
}

type AnalysisRepository interface {
	// SaveAnalysis inserts the record and returns the persisted row,
	// re-selected so the generated ID and timestamp are populated.
	SaveAnalysis(ctx context.Context, analysis *model.CodeAnalysis) (*model.CodeAnalysis, error)
	// ListByUser returns the user's analyses ordered by creation time
	// ascending. Empty slice — never an error — when the store is degraded.
	ListByUser(ctx context.Context, userID int64) ([]model.CodeAnalysis, error)
	// GetAnalysisByID returns the record or apperror.ErrNotFound.
	GetAnalysisByID(ctx context.Context, id int64) (*model.CodeAnalysis, error)
}
