package primitives

import "math"

// HashCode represents a hash value computed over encoded rows or keys.
// It is used for fast bucket lookups in the hashed containers.
type HashCode uint64

// RowID counts rows flowing through an operator (limit/offset counters,
// effect rows reported to the caller).
type RowID uint64

// UnlimitedRows is the row cap of an operator with no upper bound on output.
const UnlimitedRows RowID = math.MaxUint64
