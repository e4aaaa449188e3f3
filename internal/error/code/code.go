package code

// HTTP status codes used by the error registry.
const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusInternalServerError = 500
	StatusTooManyRequests     = 429
)

// Common error codes (100xxx).
const (
	// ErrSuccess - 200: success.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: unknown error.
	ErrUnknown
	// ErrBind - 400: request body binding error.
	ErrBind
	// ErrValidation - 400: request field validation error.
	ErrValidation
	// ErrTokenInvalid - 401: missing, invalid or expired token.
	ErrTokenInvalid
	// ErrPermissionDenied - 403: authenticated but not allowed.
	ErrPermissionDenied
	// ErrTooManyRequests - 429: rate limit exceeded.
	ErrTooManyRequests
)

// User error codes (101xxx).
const (
	// ErrUserNotFound - 404: user does not exist.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 400: email already registered.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: bad credentials.
	ErrUserPasswordIncorrect
)

// Node error codes (102xxx).
const (
	// ErrNodeNotFound - 404: node does not exist.
	ErrNodeNotFound int = iota + 102000
)

// Sensor error codes (103xxx).
const (
	// ErrSensorNotFound - 404: sensor does not exist.
	ErrSensorNotFound int = iota + 103000
	// ErrSensorNameTaken - 400: sensor name already used on the node.
	ErrSensorNameTaken
)

// Reading error codes (104xxx).
const (
	// ErrReadingNotFound - 404: reading does not exist.
	ErrReadingNotFound int = iota + 104000
)

// Alert error codes (105xxx).
const (
	// ErrAlertNotFound - 404: alert does not exist.
	ErrAlertNotFound int = iota + 105000
)

// Database error codes (106xxx).
const (
	// ErrDatabase - 500: database error.
	ErrDatabase int = iota + 106000
	// ErrRecordNotFound - 404: record does not exist.
	ErrRecordNotFound
)
