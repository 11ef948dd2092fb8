package core

// error_messages.go maps technical errors to user-facing messages.
//
// # Error Codes Reference
//
//	FILE001 - File too large           Action: Upload a smaller file
//	FILE002 - Unsupported format       Action: Upload a .csv, .xls, .xlsx or .json file
//	FILE003 - File could not be read   Action: Check that the content matches the extension
//	FILE004 - No file selected         Action: Choose a file to analyze
//	TEST001 - Test cannot run          Action: Choose other variables for this test
//	TEST002 - Unknown test             Action: Pick one of the offered tests
//	TEST003 - Unknown column           Action: Pick a column from the dataset
//	TEST004 - Missing test parameter   Action: Fill in every field of the test form
//	RND001  - Report rendering failed  Action: Download the text report instead
//	SES001  - No dataset loaded        Action: Upload a file first
//	PAGE001 - Invalid page size        Action: Use a page size between 5 and 100
//	UPL002  - System busy              Action: Please wait a moment and try again
//	UPL004  - Request cancelled        Action: Please try again
//	UPL005  - Request timed out        Action: Try a smaller file
//	RATE001 - Rate limited             Action: Please wait a moment before trying again
//	ERR000  - Unknown error            Action: Please try again or contact support
//
// Typed errors are matched first with errors.Is and errors.As. Anything
// left is matched case-insensitively against errorPatterns; the first
// matching pattern wins. For ERR000 check the application log for the
// original error, which is logged with the request id.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/rreport/internal/dataset"
	"github.com/JonMunkholm/rreport/internal/report"
	"github.com/JonMunkholm/rreport/internal/stats"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`          // What happened (user-friendly)
	Action  string `json:"action"`           // What to do about it
	Code    string `json:"code"`             // Error code for support reference
	Detail  string `json:"detail,omitempty"` // Technical detail safe to show, if any
}

type typedError struct {
	match func(error) bool
	msg   UserMessage
	// detail copies the error text into UserMessage.Detail.
	detail bool
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

func as[T error]() func(error) bool {
	return func(err error) bool {
		var target T
		return errors.As(err, &target)
	}
}

var typedErrors = []typedError{
	{
		match: is(ErrFileTooLarge),
		msg:   UserMessage{Message: "File exceeds the maximum upload size", Action: "Upload a smaller file", Code: "FILE001"},
	},
	{
		match: is(dataset.ErrUnsupportedFormat),
		msg:   UserMessage{Message: "Unsupported file format", Action: "Upload a .csv, .xls, .xlsx or .json file", Code: "FILE002"},
	},
	{
		match:  as[*dataset.ParseError](),
		msg:    UserMessage{Message: "The file could not be read", Action: "Check that the content matches the file extension", Code: "FILE003"},
		detail: true,
	},
	{
		match: is(ErrNoFile),
		msg:   UserMessage{Message: "No file was selected", Action: "Choose a file to analyze", Code: "FILE004"},
	},
	{
		match:  is(stats.ErrPrecondition),
		msg:    UserMessage{Message: "The test cannot run on the selected data", Action: "Choose other variables for this test", Code: "TEST001"},
		detail: true,
	},
	{
		match:  is(ErrUnknownTest),
		msg:    UserMessage{Message: "Unknown statistical test", Action: "Pick one of the offered tests", Code: "TEST002"},
		detail: true,
	},
	{
		match:  is(report.ErrColumnNotFound),
		msg:    UserMessage{Message: "The selected column does not exist", Action: "Pick a column from the dataset", Code: "TEST003"},
		detail: true,
	},
	{
		match:  is(ErrInvalidRequest),
		msg:    UserMessage{Message: "A test parameter is missing", Action: "Fill in every field of the test form", Code: "TEST004"},
		detail: true,
	},
	{
		match:  as[*report.RenderError](),
		msg:    UserMessage{Message: "The report could not be rendered", Action: "Download the text report instead", Code: "RND001"},
		detail: true,
	},
	{
		match: is(ErrNoData),
		msg:   UserMessage{Message: "No dataset is loaded", Action: "Upload a file first", Code: "SES001"},
	},
	{
		match: is(dataset.ErrInvalidPageSize),
		msg:   UserMessage{Message: "Invalid page size", Action: "Use a page size between 5 and 100", Code: "PAGE001"},
	},
	{
		match: is(ErrTooManyAnalyses),
		msg:   UserMessage{Message: "System is busy analyzing other files", Action: "Please wait a moment and try again", Code: "UPL002"},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catches errors that arrive as text only, such as those
// produced by the HTTP stack.
var errorPatterns = []errorPattern{
	{
		pattern: "request body too large",
		msg:     UserMessage{Message: "File exceeds the maximum upload size", Action: "Upload a smaller file", Code: "FILE001"},
	},
	{
		pattern: "no such file",
		msg:     UserMessage{Message: "No file was selected", Action: "Choose a file to analyze", Code: "FILE004"},
	},
	{
		pattern: "too many concurrent",
		msg:     UserMessage{Message: "System is busy analyzing other files", Action: "Please wait a moment and try again", Code: "UPL002"},
	},
	{
		pattern: "context canceled",
		msg:     UserMessage{Message: "Request was cancelled", Action: "Please try again", Code: "UPL004"},
	},
	{
		pattern: "context deadline exceeded",
		msg:     UserMessage{Message: "Request timed out", Action: "Try a smaller file", Code: "UPL005"},
	},
	{
		pattern: "rate limit",
		msg:     UserMessage{Message: "Too many requests", Action: "Please wait a moment before trying again", Code: "RATE001"},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := dataset.Parse(data, "notes.txt")
//	msg := MapError(err)
//	// msg.Code == "FILE002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, te := range typedErrors {
		if te.match(err) {
			msg := te.msg
			if te.detail {
				msg.Detail = err.Error()
			}
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
