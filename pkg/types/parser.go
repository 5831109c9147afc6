package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var typeNamePattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_ ]*?)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?\s*$`)

var typeAliases = map[string]TypeID{
	"NULL":              NullType,
	"BOOL":              BooleanType,
	"BOOLEAN":           BooleanType,
	"TINYINT":           TinyIntType,
	"INT1":              TinyIntType,
	"SMALLINT":          SmallIntType,
	"INT2":              SmallIntType,
	"INT":               IntegerType,
	"INT4":              IntegerType,
	"INTEGER":           IntegerType,
	"BIGINT":            BigIntType,
	"INT8":              BigIntType,
	"UTINYINT":          UTinyIntType,
	"USMALLINT":         USmallIntType,
	"UINT32":            UInt32Type,
	"UINTEGER":          UInt32Type,
	"UINT64":            UInt64Type,
	"UBIGINT":           UInt64Type,
	"HUGEINT":           HugeIntType,
	"REAL":              RealType,
	"DOUBLE":            RealType,
	"FLOAT":             FloatType,
	"DECIMAL":           DecimalType,
	"NUMERIC":           DecimalType,
	"NUMBER":            NumberType,
	"DATE":              DateType,
	"TIMESTAMP":         TimestampType,
	"DATETIME":          TimestampType,
	"CHAR":              CharType,
	"VARCHAR":           VarcharType,
	"STRING":            VarcharType,
	"TEXT":              VarcharType,
	"CHARACTER VARYING": VarcharType,
	"BLOB":              BlobType,
	"BYTEA":             BlobType,
	"CLOB":              ClobType,
	"BINARY":            BinaryType,
}

// TypeDefaults fills in the widths a bare type name leaves out.
type TypeDefaults struct {
	VarcharLength    uint32
	DecimalPrecision uint8
	DecimalScale     uint8
}

// DefaultTypeDefaults returns VARCHAR(65535) and DECIMAL(18,3).
func DefaultTypeDefaults() TypeDefaults {
	return TypeDefaults{VarcharLength: DefaultVarcharLength, DecimalPrecision: 18, DecimalScale: 3}
}

// ParseLogicalType reads a SQL type name such as "INT", "VARCHAR(20)" or
// "DECIMAL(10,2)" using DefaultTypeDefaults.
func ParseLogicalType(name string) (LogicalType, error) {
	return ParseLogicalTypeWith(name, DefaultTypeDefaults())
}

// ParseLogicalTypeWith reads a SQL type name, taking missing widths from
// defaults.
//
// Parameters:
//   - name: the type name, case-insensitive, with optional width arguments
//   - defaults: widths used when the name carries no arguments
//
// Returns:
//   - LogicalType: the parsed type
//   - error: an error if the name is unknown or the arguments are malformed
func ParseLogicalTypeWith(name string, defaults TypeDefaults) (LogicalType, error) {
	m := typeNamePattern.FindStringSubmatch(name)
	if m == nil {
		return LogicalType{}, fmt.Errorf("invalid type name %q", name)
	}
	id, ok := typeAliases[strings.ToUpper(strings.Join(strings.Fields(m[1]), " "))]
	if !ok {
		return LogicalType{}, fmt.Errorf("unknown type %q", m[1])
	}

	var args []uint64
	for _, a := range m[2:] {
		if a == "" {
			continue
		}
		n, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return LogicalType{}, fmt.Errorf("invalid type argument %q: %w", a, err)
		}
		args = append(args, n)
	}

	switch {
	case id.IsDecimal():
		precision, scale := uint64(defaults.DecimalPrecision), uint64(defaults.DecimalScale)
		if len(args) > 0 {
			precision, scale = args[0], 0
		}
		if len(args) > 1 {
			scale = args[1]
		}
		if precision == 0 || precision > uint64(MaxDecimalPrecision) || scale > precision {
			return LogicalType{}, fmt.Errorf("invalid decimal(%d,%d)", precision, scale)
		}
		t := Decimal(uint8(precision), uint8(scale))
		t.ID = id
		return t, nil
	case id.IsString():
		length := uint64(defaults.VarcharLength)
		if len(args) > 0 {
			length = args[0]
		}
		if len(args) > 1 {
			return LogicalType{}, fmt.Errorf("%s takes one argument", id)
		}
		return LogicalType{ID: id, Length: uint32(length), Width: uint32(length)}, nil
	}
	if len(args) > 0 {
		return LogicalType{}, fmt.Errorf("%s takes no arguments", id)
	}
	return NewLogicalType(id), nil
}

// ParseValue converts a literal string into a value of type t. The literal
// NULL (any case) yields a typed null.
func ParseValue(t LogicalType, literal string) (Value, error) {
	if strings.EqualFold(strings.TrimSpace(literal), "null") {
		return NewNull(t), nil
	}
	return CastValue(NewVarchar(literal), t)
}
