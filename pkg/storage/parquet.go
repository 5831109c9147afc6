package storage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/iterator"
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

const parquetBatchSize = 256

// ParquetSource is a DataSource over a flat parquet file. Rows are decoded
// a batch at a time; the cursor is the row's index in the file.
//
// Column mapping:
//   - BOOLEAN -> BOOLEAN
//   - INT32 -> INTEGER, INT64 -> BIGINT
//   - FLOAT, DOUBLE -> REAL
//   - BYTE_ARRAY, FIXED_LEN_BYTE_ARRAY -> VARCHAR
type ParquetSource struct {
	name   string
	file   *parquet.File
	reader *parquet.Reader
	closer io.Closer
	schema *tuple.Schema

	batch []parquet.Row
	ready []*tuple.Record
	pos   int64
	eof   bool
}

// NewParquetSource opens the parquet file at path. Close releases it.
func NewParquetSource(path string) (*ParquetSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(err, "NewParquetSource")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, wrapErr(err, "NewParquetSource")
	}
	src, err := OpenParquet(path, f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closer = f
	return src, nil
}

// OpenParquet reads parquet data from r, which holds size bytes.
//
// Returns:
//   - *ParquetSource: a source positioned at the first row
//   - error: when the footer cannot be read, or NOT_IMPLEMENTED for nested,
//     repeated or INT96 columns
func OpenParquet(name string, r io.ReaderAt, size int64) (*ParquetSource, error) {
	f, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, wrapErr(err, "OpenParquet")
	}
	schema, err := schemaFromParquet(f.Schema())
	if err != nil {
		return nil, err
	}
	return &ParquetSource{
		name:   name,
		file:   f,
		reader: parquet.NewReader(f),
		schema: schema,
		batch:  make([]parquet.Row, parquetBatchSize),
	}, nil
}

func schemaFromParquet(s *parquet.Schema) (*tuple.Schema, error) {
	fields := s.Fields()
	cols := make([]tuple.Column, len(fields))
	for i, field := range fields {
		if !field.Leaf() || field.Repeated() {
			return nil, dberr.Newf(dberr.KindNotImplemented,
				"parquet column %s: nested and repeated columns are not supported", field.Name())
		}
		t, err := typeFromParquet(field.Type())
		if err != nil {
			return nil, dberr.Newf(dberr.KindNotImplemented, "parquet column %s: %v", field.Name(), err)
		}
		cols[i] = tuple.Column{Name: field.Name(), Type: t}
	}
	return tuple.NewSchema(cols...), nil
}

func typeFromParquet(t parquet.Type) (types.LogicalType, error) {
	switch t.Kind() {
	case parquet.Boolean:
		return types.Boolean(), nil
	case parquet.Int32:
		return types.Integer(), nil
	case parquet.Int64:
		return types.BigInt(), nil
	case parquet.Float, parquet.Double:
		return types.Real(), nil
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return types.Varchar(types.DefaultVarcharLength), nil
	default:
		return types.LogicalType{}, fmt.Errorf("unsupported physical type %s", t.Kind())
	}
}

func (p *ParquetSource) decode(row parquet.Row) (*tuple.Record, error) {
	values := make([]types.Value, p.schema.NumColumns())
	cols := p.schema.Columns()
	for i := range values {
		values[i] = types.NewNull(cols[i].Type)
	}
	for _, v := range row {
		c := v.Column()
		if c < 0 || c >= len(values) || v.IsNull() {
			continue
		}
		switch v.Kind() {
		case parquet.Boolean:
			values[c] = types.NewBoolean(v.Boolean())
		case parquet.Int32:
			values[c] = types.NewInteger(v.Int32())
		case parquet.Int64:
			values[c] = types.NewBigInt(v.Int64())
		case parquet.Float:
			values[c] = types.NewReal(float64(v.Float()))
		case parquet.Double:
			values[c] = types.NewReal(v.Double())
		case parquet.ByteArray, parquet.FixedLenByteArray:
			values[c] = types.NewString(cols[c].Type, string(v.ByteArray()))
		default:
			return nil, dberr.Newf(dberr.KindNotImplemented, "unsupported parquet value kind %s", v.Kind())
		}
	}
	return tuple.NewRecord(values), nil
}

// fill decodes the next batch into p.ready.
func (p *ParquetSource) fill() error {
	n, err := p.reader.ReadRows(p.batch)
	for i := 0; i < n; i++ {
		rec, derr := p.decode(p.batch[i])
		if derr != nil {
			return derr
		}
		p.ready = append(p.ready, rec)
	}
	if errors.Is(err, io.EOF) {
		p.eof = true
		return nil
	}
	if err == nil && n == 0 {
		p.eof = true
	}
	return err
}

func (p *ParquetSource) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	for len(p.ready) == 0 {
		if p.eof {
			return nil, iterator.NoCursor, true, nil
		}
		if err := p.fill(); err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "ParquetSource.Next")
		}
	}
	rec := p.ready[0]
	p.ready = p.ready[1:]
	cur := iterator.Cursor(p.pos)
	p.pos++
	return rec, cur, false, nil
}

// ResetNext seeks back to the first row.
func (p *ParquetSource) ResetNext() {
	p.ready = nil
	p.pos = 0
	p.eof = false
	if err := p.reader.SeekToRow(0); err != nil {
		p.reader = parquet.NewReader(p.file)
	}
}

func (p *ParquetSource) GetSchema() *tuple.Schema { return p.schema }

// NumRows is the row count recorded in the file footer.
func (p *ParquetSource) NumRows() int64 { return p.file.NumRows() }

func (p *ParquetSource) Close() error {
	err := p.reader.Close()
	if p.closer != nil {
		if cerr := p.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (p *ParquetSource) String() string { return fmt.Sprintf("ParquetSource(%s)", p.name) }
