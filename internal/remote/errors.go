package remote

import (
	"errors"
	"fmt"
	"strings"
)

// Failure classes of a remote call. Each has a distinct user-facing message,
// see Message.
var (
	ErrTimeout = errors.New("generation service timed out")
	ErrNetwork = errors.New("generation service unreachable")
	ErrServer  = errors.New("generation service internal error")
)

const (
	timeoutMessage = "Request timed out. The AI is taking longer than expected to generate the paper. " +
		"Please try again with a simpler configuration or check your internet connection."
	networkMessage = "Network error. Please check your internet connection and try again."
	serverMessage  = "Server error occurred while generating the paper. Please try again later."
)

// FieldError is one entry of a validation failure reported by the service.
type FieldError struct {
	Loc []string
	Msg string
}

func (f FieldError) String() string {
	if len(f.Loc) == 0 {
		return f.Msg
	}
	return strings.Join(f.Loc, ".") + ": " + f.Msg
}

// ValidationError is returned when the service rejects a request as
// unprocessable (HTTP 422).
type ValidationError struct {
	Fields []FieldError
	Detail string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "Validation Error: " + e.Detail
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "Validation Error: " + strings.Join(parts, ", ")
}

// APIError is any other non-success response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("generation service returned %d: %s", e.Status, e.Message)
}

// Message turns a remote error into the text shown to the user.
func Message(err error) string {
	var verr *ValidationError
	var aerr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return timeoutMessage
	case errors.Is(err, ErrNetwork):
		return networkMessage
	case errors.Is(err, ErrServer):
		return serverMessage
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &aerr):
		return aerr.Message
	default:
		return err.Error()
	}
}
