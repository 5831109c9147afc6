package primitives

import "fmt"

// ComparisonType enumerates the six SQL comparison operators.
type ComparisonType int

const (
	InvalidComparison ComparisonType = iota
	Equals
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

func (p ComparisonType) String() string {
	switch p {
	case Equals:
		return "="

	case NotEqual:
		return "<>"

	case LessThan:
		return "<"

	case LessThanOrEqual:
		return "<="

	case GreaterThan:
		return ">"

	case GreaterThanOrEqual:
		return ">="

	default:
		return "UNKNOWN"
	}
}

// ParseComparison converts an operator name into a ComparisonType.
// Both "<>" and "!=" are accepted for inequality.
func ParseComparison(op string) (ComparisonType, error) {
	switch op {
	case "=", "==":
		return Equals, nil
	case "<>", "!=":
		return NotEqual, nil
	case "<":
		return LessThan, nil
	case "<=":
		return LessThanOrEqual, nil
	case ">":
		return GreaterThan, nil
	case ">=":
		return GreaterThanOrEqual, nil
	default:
		return InvalidComparison, fmt.Errorf("unknown comparison operator %q", op)
	}
}

// Revert returns the logical negation: NOT (a op b) == a Revert(op) b.
func (p ComparisonType) Revert() ComparisonType {
	switch p {
	case Equals:
		return NotEqual
	case NotEqual:
		return Equals
	case LessThan:
		return GreaterThanOrEqual
	case LessThanOrEqual:
		return GreaterThan
	case GreaterThan:
		return LessThanOrEqual
	case GreaterThanOrEqual:
		return LessThan
	default:
		return InvalidComparison
	}
}

// Flip returns the operator obtained by swapping operands: a op b == b Flip(op) a.
func (p ComparisonType) Flip() ComparisonType {
	switch p {
	case LessThan:
		return GreaterThan
	case LessThanOrEqual:
		return GreaterThanOrEqual
	case GreaterThan:
		return LessThan
	case GreaterThanOrEqual:
		return LessThanOrEqual
	default:
		return p
	}
}
