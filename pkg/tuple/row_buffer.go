package tuple

import (
	"rowexec/pkg/primitives"
	"rowexec/pkg/types"
)

// FieldMeta describes one encoded field. End is the cumulative byte offset
// one past the field's payload; a null field repeats the previous End.
type FieldMeta struct {
	Type      types.TypeID
	Length    uint32
	Scale     uint8
	Precision uint8
	IsNull    bool
	End       int
}

// LogicalType rebuilds the field's logical type from the stored metadata.
func (m FieldMeta) LogicalType() types.LogicalType {
	t := types.NewLogicalType(m.Type)
	switch {
	case m.Type.IsDecimal():
		t = types.Decimal(m.Precision, m.Scale)
		t.ID = m.Type
	case m.Type.IsString():
		t.Length = m.Length
		t.Width = m.Length
	}
	return t
}

// RowBuffer is a build-once arena: one byte slice whose capacity is fixed
// at construction plus an offset table. Fields are appended in order and
// read back through bounds-checked spans.
type RowBuffer struct {
	buf   []byte
	metas []FieldMeta
}

// NewRowBuffer reserves exactly capacity payload bytes for fieldCount fields.
func NewRowBuffer(capacity, fieldCount int) *RowBuffer {
	return &RowBuffer{
		buf:   make([]byte, 0, capacity),
		metas: make([]FieldMeta, 0, fieldCount),
	}
}

// AddItem appends one field. It refuses, returning false, to write past the
// reserved capacity; the buffer never grows.
func (b *RowBuffer) AddItem(raw []byte, size int, t types.LogicalType, isNull bool) bool {
	if isNull {
		size = 0
	}
	if size < 0 || size > len(raw) || len(b.buf)+size > cap(b.buf) {
		return false
	}
	b.buf = append(b.buf, raw[:size]...)
	b.metas = append(b.metas, FieldMeta{
		Type:      t.ID,
		Length:    t.Length,
		Scale:     t.Scale,
		Precision: t.Precision,
		IsNull:    isNull,
		End:       len(b.buf),
	})
	return true
}

// FieldCount returns the number of fields appended so far.
func (b *RowBuffer) FieldCount() int { return len(b.metas) }

// Len returns the number of payload bytes written.
func (b *RowBuffer) Len() int { return len(b.buf) }

// Capacity returns the reserved payload size.
func (b *RowBuffer) Capacity() int { return cap(b.buf) }

// Meta returns the metadata of slot.
func (b *RowBuffer) Meta(slot int) (FieldMeta, bool) {
	if slot < 0 || slot >= len(b.metas) {
		return FieldMeta{}, false
	}
	return b.metas[slot], true
}

// span returns the [start, end) byte range of slot.
func (b *RowBuffer) span(slot int) (int, int, bool) {
	if slot < 0 || slot >= len(b.metas) {
		return 0, 0, false
	}
	start := 0
	if slot > 0 {
		start = b.metas[slot-1].End
	}
	end := b.metas[slot].End
	if start > end || end > len(b.buf) {
		return 0, 0, false
	}
	return start, end, true
}

// Bytes returns the raw payload buffer. Callers must not modify it.
func (b *RowBuffer) Bytes() []byte { return b.buf }

// Hash mixes the payload bytes with each field's null flag and type tag, so
// equal bytes under different null patterns hash apart.
func (b *RowBuffer) Hash() primitives.HashCode {
	h := primitives.HashBytes(b.buf)
	for _, m := range b.metas {
		tag := uint64(m.Type) << 1
		if m.IsNull {
			tag |= 1
		}
		h = primitives.CombineHash(h, tag)
	}
	return h
}
