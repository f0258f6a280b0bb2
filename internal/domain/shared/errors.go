package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped variants with a custom message
// still satisfy errors.Is against the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Financial engine errors
var (
	ErrMissingExchangeRate = NewDomainError("MISSING_EXCHANGE_RATE", "Exchange rate is missing or not positive")
	ErrInvalidTargetMargin = NewDomainError("INVALID_TARGET_MARGIN", "Target margin must be below 100 percent")
	ErrAmbiguousLineMatch  = NewDomainError("AMBIGUOUS_LINE_MATCH", "Style and color match more than one order line")
	ErrInvalidGranularity  = NewDomainError("INVALID_GRANULARITY", "Unsupported period granularity")
	ErrInvalidSegment      = NewDomainError("INVALID_SEGMENT", "Unknown costing segment")
)
