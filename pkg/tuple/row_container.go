package tuple

import (
	"strings"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/primitives"
	"rowexec/pkg/types"
)

// RowContainer is the encoded form of one row. It is immutable once built.
type RowContainer struct {
	rb *RowBuffer
}

// NewRowContainer encodes values into a buffer sized up front from the sum
// of the value sizes.
func NewRowContainer(values []types.Value) *RowContainer {
	size := 0
	for _, v := range values {
		size += v.Size()
	}
	rb := NewRowBuffer(size, len(values))
	for _, v := range values {
		// Cannot fail: the buffer was sized from these exact values.
		rb.AddItem(v.RawBytes(), v.Size(), v.Type(), v.IsNull())
	}
	return &RowContainer{rb: rb}
}

// ColumnCount returns the number of fields.
func (rc *RowContainer) ColumnCount() int { return rc.rb.FieldCount() }

// ByteSize returns the payload size plus the metadata table size.
func (rc *RowContainer) ByteSize() int {
	return rc.rb.Len() + rc.rb.FieldCount()*fieldMetaSize
}

// fieldMetaSize approximates one FieldMeta for memory accounting.
const fieldMetaSize = 24

// Field decodes slot back into a Value.
func (rc *RowContainer) Field(slot int) (types.Value, error) {
	start, end, ok := rc.rb.span(slot)
	if !ok {
		return types.Value{}, dberr.Newf(dberr.KindExecutor, "unfound slot=%d", slot)
	}
	meta := rc.rb.metas[slot]
	raw := make([]byte, end-start)
	copy(raw, rc.rb.buf[start:end])
	return types.DecodeValue(meta.LogicalType(), raw, meta.IsNull)
}

// Values decodes every field.
func (rc *RowContainer) Values() ([]types.Value, error) {
	out := make([]types.Value, rc.ColumnCount())
	for i := range out {
		v, err := rc.Field(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Concat returns a new container holding rc's fields followed by other's.
// The payload is bytes(rc) ++ bytes(other) with other's offsets shifted.
func (rc *RowContainer) Concat(other *RowContainer) *RowContainer {
	left, right := rc.rb, other.rb
	rb := NewRowBuffer(left.Len()+right.Len(), left.FieldCount()+right.FieldCount())
	rb.buf = append(rb.buf, left.buf...)
	rb.buf = append(rb.buf, right.buf...)
	rb.metas = append(rb.metas, left.metas...)
	shift := left.Len()
	for _, m := range right.metas {
		m.End += shift
		rb.metas = append(rb.metas, m)
	}
	return &RowContainer{rb: rb}
}

// Hash is the buffer hash combined with every null flag and type tag.
func (rc *RowContainer) Hash() primitives.HashCode { return rc.rb.Hash() }

// Copy returns an independent container with the same contents.
func (rc *RowContainer) Copy() *RowContainer {
	rb := NewRowBuffer(rc.rb.Len(), rc.rb.FieldCount())
	rb.buf = append(rb.buf, rc.rb.buf...)
	rb.metas = append(rb.metas, rc.rb.metas...)
	return &RowContainer{rb: rb}
}

// Buffer exposes the underlying row buffer for read-only inspection.
func (rc *RowContainer) Buffer() *RowBuffer { return rc.rb }

func (rc *RowContainer) String() string {
	parts := make([]string, rc.ColumnCount())
	for i := range parts {
		v, err := rc.Field(i)
		if err != nil {
			parts[i] = "?"
			continue
		}
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
