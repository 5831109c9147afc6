package error

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorCategory classifies errors by their nature and appropriate handling strategy.
type ErrorCategory int

const (
	// ErrCategoryUser represents errors caused by the statement itself: bad
	// operand types, unsupported operator combinations, out-of-range values.
	ErrCategoryUser ErrorCategory = iota

	// ErrCategoryTransient represents conditions that may succeed on retry,
	// such as the memory budget being exhausted by concurrent connections.
	ErrCategoryTransient

	// ErrCategorySystem represents internal invariant violations.
	ErrCategorySystem
)

// ErrorKind is the execution engine's error taxonomy. Every error leaving an
// operator's Next carries exactly one kind.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota

	// KindPlanner reports schema or column resolution failures, e.g. an
	// unknown column index.
	KindPlanner

	// KindExecutor reports runtime evaluation failures such as an unsupported
	// operator/type combination or a subquery with the wrong shape.
	KindExecutor

	// KindMismatchType reports an argument of the wrong kind, e.g. a
	// non-integer TOP/BOTTOM count.
	KindMismatchType

	// KindOutOfRange reports negative counts and numeric overflow on cast.
	KindOutOfRange

	// KindDecimal reports fixed-point conversion failures.
	KindDecimal

	// KindNotImplemented reports an unregistered aggregate or function.
	KindNotImplemented

	// KindFatal reports an internal invariant violation.
	KindFatal

	// KindMemoryLimit reports that the connection's memory budget is exhausted.
	KindMemoryLimit
)

var kindNames = map[ErrorKind]string{
	KindUnknown:        "UNKNOWN",
	KindPlanner:        "PLANNER",
	KindExecutor:       "EXECUTOR",
	KindMismatchType:   "MISMATCH_TYPE",
	KindOutOfRange:     "OUT_OF_RANGE",
	KindDecimal:        "DECIMAL",
	KindNotImplemented: "NOT_IMPLEMENTED",
	KindFatal:          "FATAL",
	KindMemoryLimit:    "MEMORY_LIMIT",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Category maps a kind onto its handling category.
func (k ErrorKind) Category() ErrorCategory {
	switch k {
	case KindFatal, KindUnknown:
		return ErrCategorySystem
	case KindMemoryLimit:
		return ErrCategoryTransient
	default:
		return ErrCategoryUser
	}
}

// ErrMemoryLimitExceeded is the sentinel behind every KindMemoryLimit error,
// so callers can test for it with errors.Is.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// DBError represents a structured database error with rich context information.
type DBError struct {
	// Code is the string form of Kind unless a caller supplied a finer code.
	Code string

	Kind ErrorKind

	Category ErrorCategory

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail provides additional context about the specific error instance.
	Detail string

	// Hint suggests how the user might fix or work around this error.
	Hint string

	// Operation identifies the operation that was running, e.g. "HashJoinExec.Next".
	Operation string

	// Component identifies where the error originated, e.g. "execution/join".
	Component string

	// Location is the statement position reported to the caller, -1 when unknown.
	Location int

	// Cause is the underlying error that triggered this database error.
	Cause error

	// Stack contains the call stack where this error was created.
	Stack []uintptr
}

// New creates a new DBError of the given kind.
func New(kind ErrorKind, message string) *DBError {
	return &DBError{
		Code:     kind.String(),
		Kind:     kind,
		Category: kind.Category(),
		Message:  message,
		Location: -1,
		Stack:    captureStack(),
	}
}

// Newf is New with a format string.
func Newf(kind ErrorKind, format string, args ...any) *DBError {
	err := New(kind, fmt.Sprintf(format, args...))
	err.Stack = captureStack()
	return err
}

// MemoryLimit builds the budget-exhaustion error for a request of size bytes.
func MemoryLimit(requested, limit uint64) *DBError {
	err := New(KindMemoryLimit, "Memory Limit Exceeded")
	err.Detail = fmt.Sprintf("requested %d bytes, limit %d bytes", requested, limit)
	err.Cause = ErrMemoryLimitExceeded
	return err
}

// Wrap wraps an existing error with database-specific context information.
// If the error is already a DBError, it enriches the existing error with
// operation and component context (only if not already set).
func Wrap(err error, code, operation, component string) *DBError {
	if err == nil {
		return nil
	}

	var dbErr *DBError
	if errors.As(err, &dbErr) {
		if dbErr.Operation == "" {
			dbErr.Operation = operation
		}
		if dbErr.Component == "" {
			dbErr.Component = component
		}
		return dbErr
	}

	return &DBError{
		Code:      code,
		Kind:      KindExecutor,
		Category:  ErrCategorySystem,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Location:  -1,
		Cause:     errors.WithStack(err),
		Stack:     captureStack(),
	}
}

// KindOf returns the kind of the first DBError in err's chain.
func KindOf(err error) ErrorKind {
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsMemoryLimit reports whether err is a budget-exhaustion condition.
func IsMemoryLimit(err error) bool {
	return errors.Is(err, ErrMemoryLimitExceeded)
}

// captureStack captures the current call stack for debugging purposes.
// It skips the first 3 frames to exclude captureStack, New/Wrap, and the
// immediate caller, focusing on the actual error origin.
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

// Error implements the standard Go error interface
//
// The format follows the pattern:
// [KIND] Message: Detail (operation: Operation, component: Component) caused by: underlying error
func (e *DBError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Detail != "" {
		b.WriteString(fmt.Sprintf(": %s", e.Detail))
	}

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s", e.Operation))
		if e.Component != "" {
			b.WriteString(fmt.Sprintf(", component: %s", e.Component))
		}
		b.WriteString(")")
	}

	if e.Cause != nil && e.Cause != ErrMemoryLimitExceeded {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error, enabling error chain traversal
// with errors.Is and errors.As.
func (e *DBError) Unwrap() error {
	return e.Cause
}

// WithOperation fills in the operation/component pair if unset and returns e.
func (e *DBError) WithOperation(operation, component string) *DBError {
	if e.Operation == "" {
		e.Operation = operation
	}
	if e.Component == "" {
		e.Component = component
	}
	return e
}

// FormatStack returns a human-readable stack trace for debugging purposes.
func (e *DBError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		b.WriteString(fmt.Sprintf("  %s\n    %s:%d\n",
			f.Function, f.File, f.Line))
		if !more {
			break
		}
	}

	return b.String()
}
