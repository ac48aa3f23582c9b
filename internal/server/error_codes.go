package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument     = 1000
	ErrCodeMissingRequired     = 1001
	ErrCodeRequestTooLarge     = 1002
	ErrCodeInvalidMimeType     = 1003
	ErrCodeAmbiguousSource     = 1004
	ErrCodeInvalidSearch       = 1005
	ErrCodeMalformedRange      = 1006
	ErrCodeRangeNotSatisfiable = 1007

	// Domain state (2xxx)
	ErrCodeObjectNotFound   = 2001
	ErrCodeAccessIDNotFound = 2002

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal        = 4001
	ErrCodeStoreFailure    = 4002
	ErrCodeStorageFailure  = 4003
	ErrCodeInvalidLocation = 4004
	ErrCodeNotImplemented  = 4005
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeObjectNotFound
	case 416:
		return ErrCodeRangeNotSatisfiable
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	case 501:
		return ErrCodeNotImplemented
	default:
		return 0
	}
}
