package printer

import "errors"

// Transport failure kinds. Callers test them with errors.Is.
var (
	ErrUnsupported       = errors.New("printer: wireless printing is not available in this environment")
	ErrCancelled         = errors.New("printer: scan cancelled, no device was selected")
	ErrPermissionDenied  = errors.New("printer: access blocked, check app permissions")
	ErrNoWritableChannel = errors.New("printer: could not find a writable channel on this printer")
	ErrNotConnected      = errors.New("printer: no printer linked")
	ErrTimeout           = errors.New("printer: operation timed out")
)
