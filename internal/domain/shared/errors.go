package shared

// DomainError is a business-rule violation with a stable machine-readable
// code. Handlers map the code to an HTTP status; the message is safe to show
// to API clients.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches two domain errors by code, so errors.Is works on wrapped
// instances carrying contextual messages.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError builds a domain error with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Sentinel domain errors shared across modules.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInvalidQuantity     = NewDomainError("INVALID_QUANTITY", "Quantity must be a positive value")
	ErrMissingLotNumber    = NewDomainError("MISSING_LOT_NUMBER", "Inbound movements require a lot number")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrAllocationFailed    = NewDomainError("ALLOCATION_FAILED", "Lot allocation could not be completed")
	ErrBOMNotFound         = NewDomainError("BOM_NOT_FOUND", "No active bill of materials for product")
	ErrCycleDetected       = NewDomainError("CYCLE_DETECTED", "BOM structure contains a cycle")
)
