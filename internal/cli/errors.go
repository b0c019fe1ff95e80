package cli

import (
	"fmt"

	"ccloudctl/internal/ccloud"
)

// AuthError indicates the control plane rejected the credentials. It
// wraps the underlying API error so callers can still inspect the status.
type AuthError struct {
	// Endpoint is the control-plane URL that rejected the credentials.
	Endpoint string
	// Reason is the underlying error.
	Reason error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication against %s failed: %v", e.Endpoint, e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Reason
}

// WrapAuth converts credential rejections into an AuthError and passes
// everything else through unchanged.
func WrapAuth(err error, endpoint string) error {
	if err == nil {
		return nil
	}
	if ccloud.IsAuthFailure(err) {
		return &AuthError{Endpoint: endpoint, Reason: err}
	}
	return err
}

// DriftError reports that a check-mode run found resources out of shape.
// It carries no wrapped error; drift is a finding, not a failure.
type DriftError struct {
	// Pending is the number of documents that would change.
	Pending int
}

func (e *DriftError) Error() string {
	if e.Pending == 1 {
		return "check found 1 pending change"
	}
	return fmt.Sprintf("check found %d pending changes", e.Pending)
}
