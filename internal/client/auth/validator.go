package auth

import (
	"context"

	"github.com/sidereal-app/sidereal/internal/client/api"
	"github.com/sidereal-app/sidereal/internal/logging"
)

// Result is the three-way outcome of a background session check.
type Result int

const (
	// ResultValid means the server accepted the credential.
	ResultValid Result = iota
	// ResultInvalid means the server explicitly rejected it; the caller
	// should sign out.
	ResultInvalid
	// ResultIndeterminate means the check could not be completed (offline,
	// timeout, 5xx). The existing session is kept; ambiguity never signs a
	// user out.
	ResultIndeterminate
)

func (r Result) String() string {
	switch r {
	case ResultValid:
		return "valid"
	case ResultInvalid:
		return "invalid"
	default:
		return "indeterminate"
	}
}

// sessionBackend is the slice of the API client the validator needs.
type sessionBackend interface {
	ValidateSession(ctx context.Context) error
}

// Validator confirms a locally cached credential is still accepted by the
// server. It runs after first paint and never blocks it.
type Validator struct {
	backend sessionBackend
	logger  logging.Logger
}

func NewValidator(backend sessionBackend, logger logging.Logger) *Validator {
	return &Validator{backend: backend, logger: logger.With("component", "validator")}
}

// Validate classifies one check of the current credential. Only an explicit
// rejection yields ResultInvalid.
func (v *Validator) Validate(ctx context.Context) Result {
	err := v.backend.ValidateSession(ctx)
	switch {
	case err == nil:
		return ResultValid
	case api.NeedsReauth(err):
		v.logger.Info(ctx, "session rejected by server")
		return ResultInvalid
	default:
		v.logger.Warn(ctx, "session check inconclusive", "error", err)
		return ResultIndeterminate
	}
}
