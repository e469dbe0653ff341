package errors

import (
	"errors"
	"fmt"
)

// ErrForbidden marks an operation the caller's role or group assignments do
// not allow. Handlers map it to 403.
var ErrForbidden = errors.New("operation not allowed")

// SheetsEditorHint is attached to every upstream spreadsheet failure. The
// most common cause in the field is a spreadsheet not shared with the
// service account.
const SheetsEditorHint = "ensure the spreadsheet is shared with the service account as Editor"

// UpstreamError wraps a failure of an external dependency (Google Sheets).
// Op names the business operation that failed; Hint carries remediation
// advice surfaced to the client. Handlers map it to 502.
type UpstreamError struct {
	Op   string
	Hint string
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Upstream wraps err as a spreadsheet upstream failure for the given operation.
func Upstream(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Hint: SheetsEditorHint, Err: err}
}

// AsUpstream extracts an UpstreamError from err's chain, if any.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
