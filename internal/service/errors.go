package service

import "errors"

// Error taxonomy for the receipt pipeline and save-time validation. Low-level
// filesystem, transport, and SQL errors are classified into one of these at
// the component boundary; callers only ever branch with errors.Is.
var (
	// ErrInvalidFile marks a client upload defect: bad name, extension,
	// content type, or size. Never retried.
	ErrInvalidFile = errors.New("invalid file")

	// ErrNotConfigured means the vision API credential is missing. A
	// deployment defect: fatal, never retried.
	ErrNotConfigured = errors.New("vision API not configured")

	// ErrTimeout marks a vision call that exceeded its per-call deadline.
	ErrTimeout = errors.New("vision request timed out")

	// ErrTransport marks a connectivity failure before a response arrived.
	ErrTransport = errors.New("vision request failed")

	// ErrRemoteAPI marks a rejection from the remote service itself (auth,
	// quota, malformed request). Assumed persistent, so fatal.
	ErrRemoteAPI = errors.New("vision API error")

	// ErrUnparseableResponse marks a completion that could not be coerced
	// into the extraction schema. Fatal for the request: the same text will
	// not parse differently on retry.
	ErrUnparseableResponse = errors.New("unparseable vision response")

	// ErrExtractionFailed is the terminal error surfaced to callers after
	// a fatal classification or retry exhaustion.
	ErrExtractionFailed = errors.New("receipt extraction failed")

	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("amount must be positive")

	ErrDuplicateCategory = errors.New("category already exists")
	ErrCategoryInUse     = errors.New("category is referenced by transactions")
	ErrEmptyUpdate       = errors.New("no fields to update")

	ErrNotFound = errors.New("not found")
)
