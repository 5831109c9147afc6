package types

// Trivalent is the result of a comparison or boolean operation under SQL
// three-valued logic.
type Trivalent uint8

const (
	False Trivalent = iota
	True
	Unknown
)

// FromBool converts a Go bool into TRUE or FALSE.
func FromBool(b bool) Trivalent {
	if b {
		return True
	}
	return False
}

func (t Trivalent) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Not negates; UNKNOWN stays UNKNOWN.
func (t Trivalent) Not() Trivalent {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

// And follows the SQL truth table: FALSE dominates, then UNKNOWN.
func (t Trivalent) And(o Trivalent) Trivalent {
	if t == False || o == False {
		return False
	}
	if t == Unknown || o == Unknown {
		return Unknown
	}
	return True
}

// Or follows the SQL truth table: TRUE dominates, then UNKNOWN.
func (t Trivalent) Or(o Trivalent) Trivalent {
	if t == True || o == True {
		return True
	}
	if t == Unknown || o == Unknown {
		return Unknown
	}
	return False
}

// IsTrue reports whether t is exactly TRUE.
func (t Trivalent) IsTrue() bool { return t == True }
