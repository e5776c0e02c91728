package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidIndex   ErrCode = "INVALID_INDEX"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Papers ────────────────────────────────────────────────────────
	ErrNotFound           ErrCode = "NOT_FOUND"
	ErrPaperNotFound      ErrCode = "PAPER_NOT_FOUND"
	ErrQuestionOutOfRange ErrCode = "QUESTION_OUT_OF_RANGE"
	ErrEmptyQuestion      ErrCode = "EMPTY_QUESTION"
	ErrNothingSelected    ErrCode = "NOTHING_SELECTED"
	ErrReplaceRejected    ErrCode = "REPLACE_REJECTED"
	ErrImportInvalid      ErrCode = "IMPORT_INVALID"
	ErrStorageWrite       ErrCode = "STORAGE_WRITE_FAILED"

	// ─── Generation service ────────────────────────────────────────────
	ErrGeneratorTimeout     ErrCode = "GENERATOR_TIMEOUT"
	ErrGeneratorUnreachable ErrCode = "GENERATOR_UNREACHABLE"
	ErrGeneratorServer      ErrCode = "GENERATOR_SERVER_ERROR"
	ErrGeneratorValidation  ErrCode = "GENERATOR_VALIDATION_ERROR"
	ErrGeneratorFailed      ErrCode = "GENERATOR_FAILED"

	// ─── Documents ─────────────────────────────────────────────────────
	ErrRenderFailed ErrCode = "RENDER_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid username or password."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrAdminAccessOnly:
		return "This action is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidIndex:
		return "Section and question indexes must be non-negative integers."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Papers ────────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrPaperNotFound:
		return "Paper not found."
	case ErrQuestionOutOfRange:
		return "The paper has no question at that position."
	case ErrEmptyQuestion:
		return "The question has no text to replace."
	case ErrNothingSelected:
		return "No questions are selected for replacement."
	case ErrReplaceRejected:
		return "The generation service could not replace the question."
	case ErrImportInvalid:
		return "Import data must be a JSON array of papers."
	case ErrStorageWrite:
		return "The paper could not be saved to local storage."

	// ─── Generation service ────────────────────────────────────────────
	case ErrGeneratorTimeout:
		return "Request timed out. Please try again."
	case ErrGeneratorUnreachable:
		return "Network error. Please check your internet connection and try again."
	case ErrGeneratorServer:
		return "Server error occurred while generating the paper. Please try again later."
	case ErrGeneratorValidation:
		return "The generation service rejected the request."
	case ErrGeneratorFailed:
		return "The generation service returned an error."

	// ─── Documents ─────────────────────────────────────────────────────
	case ErrRenderFailed:
		return "Failed to generate the document. Please try again."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
