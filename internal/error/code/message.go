package code

// Error code to message mapping.
var codeMessageMap = map[int]string{
	// Common
	ErrSuccess:          "success",
	ErrUnknown:          "unknown error",
	ErrBind:             "request body binding error",
	ErrValidation:       "request validation error",
	ErrTokenInvalid:     "invalid authentication token",
	ErrPermissionDenied: "insufficient permissions",
	ErrTooManyRequests:  "too many requests",

	// User
	ErrUserNotFound:          "user not found",
	ErrUserAlreadyExist:      "user already exists",
	ErrUserPasswordIncorrect: "invalid credentials",

	// Node
	ErrNodeNotFound: "node not found",

	// Sensor
	ErrSensorNotFound:  "sensor not found",
	ErrSensorNameTaken: "sensor name already used on this node",

	// Reading
	ErrReadingNotFound: "reading not found",

	// Alert
	ErrAlertNotFound: "alert not found",

	// Database
	ErrDatabase:       "database error",
	ErrRecordNotFound: "record not found",
}

// Error code to HTTP status mapping.
var codeStatusMap = map[int]int{
	// Common
	ErrSuccess:          StatusOK,
	ErrUnknown:          StatusInternalServerError,
	ErrBind:             StatusBadRequest,
	ErrValidation:       StatusBadRequest,
	ErrTokenInvalid:     StatusUnauthorized,
	ErrPermissionDenied: StatusForbidden,
	ErrTooManyRequests:  StatusTooManyRequests,

	// User
	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusBadRequest,
	ErrUserPasswordIncorrect: StatusUnauthorized,

	// Node
	ErrNodeNotFound: StatusNotFound,

	// Sensor
	ErrSensorNotFound:  StatusNotFound,
	ErrSensorNameTaken: StatusBadRequest,

	// Reading
	ErrReadingNotFound: StatusNotFound,

	// Alert
	ErrAlertNotFound: StatusNotFound,

	// Database
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage returns the message registered for an error code.
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "unknown error"
}

// GetStatus returns the HTTP status registered for an error code.
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
