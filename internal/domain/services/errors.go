package services

import "errors"

// Sentinel errors shared by the business services. Controllers translate
// them into the error-code registry; they never reach clients verbatim.
var (
	// ErrNotFound covers both absent and soft-deleted records.
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken is returned when creating a user with a registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrSensorNameTaken is returned when a sensor name collides on its node.
	ErrSensorNameTaken = errors.New("sensor name already used on this node")

	// ErrUnknownSensor marks a reading/alert referencing a missing sensor.
	ErrUnknownSensor = errors.New("unknown sensor reference")

	// ErrUnknownNode marks a reading/alert referencing a missing node.
	ErrUnknownNode = errors.New("unknown node reference")

	// ErrUnknownReading marks an alert referencing a missing reading.
	ErrUnknownReading = errors.New("unknown reading reference")

	// ErrSensorNodeMismatch marks a reading whose sensor is not attached to
	// the referenced node.
	ErrSensorNodeMismatch = errors.New("sensor does not belong to node")
)
