package domain

import (
	"errors"
	"fmt"
)

// Operator-facing messages stored on a review in the Error state.
const (
	MsgAnalysisFailed   = "Failed to analyze review."
	MsgGenerationFailed = "Failed to generate response."
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrIllegalTransition = errors.New("action not allowed in current status")
	ErrAnalysisFailed    = errors.New("analysis failed")
	ErrGenerationFailed  = errors.New("generation failed")
	ErrSyncFailed        = errors.New("failed to sync update with the backend; the change was reverted")
	ErrIntegrity         = errors.New("review has no row index; cannot sync")
	ErrDuplicateBusiness = errors.New("business with this name already exists")
	ErrAddBusiness       = errors.New("failed to add new business")
	ErrBatchInProgress   = errors.New("a batch is already running")
)

// ConnectionError is a failed full load from the backing store. It carries
// enough detail for the operator to check their setup.
type ConnectionError struct {
	Message        string
	StoreID        string
	CredentialHint string
	Err            error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error (store %s): %s", e.StoreID, e.Message)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Redact keeps the first and last four characters of a credential.
func Redact(secret string) string {
	if secret == "" {
		return "Not Found"
	}
	if len(secret) > 8 {
		return secret[:4] + "..." + secret[len(secret)-4:]
	}
	return secret
}
