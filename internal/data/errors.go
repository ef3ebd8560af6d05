package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrPushNotFound is returned when a push record does not exist.
	ErrPushNotFound = errors.New("push not found")
	// ErrExecNotFound is returned when an execution record does not exist.
	ErrExecNotFound = errors.New("execution not found")
	// ErrWorkerNotFound is returned when a worker record does not exist.
	ErrWorkerNotFound = errors.New("worker not found")
)
