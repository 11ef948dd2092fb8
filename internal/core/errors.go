package core

import "errors"

var (
	// ErrNoData is returned by actions that need a loaded dataset.
	ErrNoData = errors.New("no dataset loaded")

	// ErrNoFile is returned when an upload carries no file.
	ErrNoFile = errors.New("no file provided")

	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnknownTest is returned for a test name that is not offered.
	ErrUnknownTest = errors.New("unknown test")

	// ErrInvalidRequest is returned when a test request lacks a parameter.
	ErrInvalidRequest = errors.New("invalid test request")
)
