package web

// errors.go provides unified error response handling for the API.
//
// Every error is logged with full technical detail server-side, then mapped
// to a user-friendly message with a support code before it reaches the
// client. Pattern matching is case-insensitive strings.Contains; the first
// matching pattern wins, so specific patterns come before general ones.

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors (FILE001-FILE099)
	{
		pattern: "file not found",
		msg: UserMessage{
			Message: "The requested file was not found",
			Action:  "Upload the file first or check the filename",
			Code:    "FILE001",
		},
	},
	{
		pattern: "exceeds limit",
		msg: UserMessage{
			Message: "The file is larger than the allowed maximum",
			Action:  "Split the file or raise the configured size limit",
			Code:    "FILE002",
		},
	},
	{
		pattern: "not allowed",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a .csv or .xlsx file",
			Code:    "FILE003",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "This file format cannot be processed",
			Action:  "Upload a .csv or .xlsx file",
			Code:    "FILE003",
		},
	},
	{
		pattern: "file contains no data",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with a header row and data rows",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose a .csv or .xlsx file to upload",
			Code:    "FILE005",
		},
	},

	// Configuration errors (CFG001-CFG099)
	{
		pattern: "masking config",
		msg: UserMessage{
			Message: "The masking configuration could not be parsed",
			Action:  "Check that the configuration is valid JSON",
			Code:    "CFG001",
		},
	},
	{
		pattern: "unknown anonymization method",
		msg: UserMessage{
			Message: "The configuration names an unknown anonymization method",
			Action:  "Check the method names against the supported list",
			Code:    "CFG002",
		},
	},
	{
		pattern: "output format",
		msg: UserMessage{
			Message: "The requested output format is invalid",
			Action:  "Use csv or xlsx, matching the output filename",
			Code:    "CFG003",
		},
	},

	// Job errors (JOB001-JOB099)
	{
		pattern: "job not found",
		msg: UserMessage{
			Message: "No job with this ID exists",
			Action:  "Check the job ID returned when the job was started",
			Code:    "JOB001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The operation was cancelled",
			Action:  "Please try again",
			Code:    "JOB002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "JOB003",
		},
	},

	// Database errors (DB001-DB099)
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the audit database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},

	// Rate limiting (RATE001)
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// MapError converts a technical error into a user-friendly message.
// Unmatched errors fall back to ERR000 so no internal detail leaks.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{Message: "OK", Code: ""}
	}

	errStr := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(errStr, p.pattern) {
			return p.msg
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
}

// ErrorResponse is the JSON structure for API error responses. It carries
// both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error with request context and writes the
// mapped user-friendly JSON response.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// writeJSON encodes v as JSON with the given status. Encoding errors are
// logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
