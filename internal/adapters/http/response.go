// Package http contains the REST adapter for the pipeline's ops API.
//
// Layout:
// - common/: response envelope and error mapping (separate to avoid import cycles)
// - middleware/: request ID, logging, recovery, CORS, metrics
// - handlers/: one handler per resource
// - router.go: route wiring
// - server.go: HTTP server lifecycle
package http

import (
	"github.com/dcastillo/commispipe/internal/adapters/http/common"
)

// Re-exported for callers that only import this package.
type (
	APIResponse = common.APIResponse
	APIMeta     = common.APIMeta
	APIError    = common.APIError
	FieldError  = common.FieldError
)

const (
	ErrCodeValidation   = common.ErrCodeValidation
	ErrCodeNotFound     = common.ErrCodeNotFound
	ErrCodeBadRequest   = common.ErrCodeBadRequest
	ErrCodeConflict     = common.ErrCodeConflict
	ErrCodeBusinessRule = common.ErrCodeBusinessRule
	ErrCodeInternal     = common.ErrCodeInternal
	ErrCodeUnavailable  = common.ErrCodeUnavailable
)
