package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamnamu1/python-code-explainer/internal/apperror"
	"github.com/gamnamu1/python-code-explainer/internal/model"
	"github.com/gamnamu1/python-code-explainer/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts or updates a user keyed by their OpenID.
//
// Conflict semantics: only the fields the caller actually supplied are
// written on update (nil pointer = leave alone), and last_signed_in is
// always refreshed. The row id never changes across upserts.
//
// Role promotion: when the OpenID matches the configured owner identity and
// the caller supplied no explicit role, the account becomes admin. An
// explicit role always wins over the promotion.
//
// In degraded mode this is a logged no-op, not a failure. Sign-in must keep
// working when the store is down; the session carries the OpenID, so losing
// the row costs history, not access.
func (db *DB) Upsert(ctx context.Context, params repository.UserUpsert) error {
	if params.OpenID == "" {
		return apperror.ValidationFailed("openId", "user openId is required for upsert")
	}

	if db.conn == nil {
		db.logger.Warn("cannot upsert user: database not available",
			slog.String("openId", params.OpenID),
		)
		return nil
	}

	signedIn := params.LastSignedIn
	if signedIn.IsZero() {
		signedIn = time.Now()
	}

	role := params.Role
	if role == nil && params.OpenID == db.ownerOpenID && db.ownerOpenID != "" {
		admin := model.RoleAdmin
		role = &admin
	}

	// One atomic statement: two racing first sign-ins for the same OpenID
	// both succeed (one inserts, one takes the conflict branch), instead of
	// the loser of a select-then-insert race hitting the UNIQUE constraint.
	// The DO UPDATE SET list carries only the supplied fields; absent
	// optional fields default to empty / "user" on insert and stay
	// untouched on update.
	now := time.Now()
	insertRole := model.RoleUser
	if role != nil {
		insertRole = *role
	}

	set := "last_signed_in = excluded.last_signed_in, updated_at = excluded.updated_at"
	if params.Name != nil {
		set += ", name = excluded.name"
	}
	if params.Email != nil {
		set += ", email = excluded.email"
	}
	if params.LoginMethod != nil {
		set += ", login_method = excluded.login_method"
	}
	if role != nil {
		set += ", role = excluded.role"
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (open_id, name, email, login_method, role, created_at, updated_at, last_signed_in)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(open_id) DO UPDATE SET `+set,
		params.OpenID,
		stringOrEmpty(params.Name),
		stringOrEmpty(params.Email),
		stringOrEmpty(params.LoginMethod),
		string(insertRole),
		now,
		now,
		signedIn,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user (openId=%s): %w", params.OpenID, err)
	}

	return nil
}

// GetByOpenID returns the user for the given identity token, or (nil, nil)
// when no such user exists or the store is degraded. "Not found" is a
// normal answer on the auth path, never an error.
func (db *DB) GetByOpenID(ctx context.Context, openID string) (*model.User, error) {
	if db.conn == nil {
		db.logger.Warn("cannot get user: database not available",
			slog.String("openId", openID),
		)
		return nil, nil
	}

	var (
		u    model.User
		role string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, open_id, name, email, login_method, role, created_at, updated_at, last_signed_in
		 FROM users WHERE open_id = ?`,
		openID,
	).Scan(
		&u.ID,
		&u.OpenID,
		&u.Name,
		&u.Email,
		&u.LoginMethod,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastSignedIn,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting user by open_id %s: %w", openID, err)
	}

	u.Role = model.Role(role)
	return &u, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
