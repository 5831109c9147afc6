package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImplicitCastCost(t *testing.T) {
	tests := []struct {
		name     string
		from, to TypeID
		expected int
	}{
		{"same type", IntegerType, IntegerType, 0},
		{"param to anything", ParamType, DateType, 0},
		{"null to integer", NullType, IntegerType, 103},
		{"null to varchar", NullType, VarcharType, 149},
		{"null to boolean", NullType, BooleanType, 110},
		{"integer widens to bigint", IntegerType, BigIntType, 101},
		{"integer widens to decimal", IntegerType, DecimalType, 104},
		{"integer to varchar", IntegerType, VarcharType, 149},
		{"bigint does not narrow", BigIntType, IntegerType, NoCast},
		{"smallint to number is illegal", SmallIntType, NumberType, NoCast},
		{"tinyint to number", TinyIntType, NumberType, 104},
		{"utinyint to usmallint", UTinyIntType, USmallIntType, 110},
		{"uint64 to bigint is illegal", UInt64Type, BigIntType, NoCast},
		{"real to float is free", RealType, FloatType, 0},
		{"float to real is free", FloatType, RealType, 0},
		{"real to decimal is illegal", RealType, DecimalType, NoCast},
		{"decimal to real", DecimalType, RealType, 102},
		{"number to real", NumberType, RealType, 102},
		{"varchar to char is free", VarcharType, CharType, 0},
		{"varchar to blob is free", VarcharType, BlobType, 0},
		{"varchar never narrows to integer", VarcharType, IntegerType, NoCast},
		{"varchar never narrows to real", VarcharType, RealType, NoCast},
		{"boolean to integer", BooleanType, IntegerType, 103},
		{"boolean to hugeint", BooleanType, HugeIntType, 120},
		{"boolean to varchar", BooleanType, VarcharType, 149},
		{"boolean to date is illegal", BooleanType, DateType, NoCast},
		{"date to timestamp", DateType, TimestampType, 120},
		{"timestamp to date", TimestampType, DateType, 110},
		{"date to integer is illegal", DateType, IntegerType, NoCast},
		{"hugeint to bigint is illegal", HugeIntType, BigIntType, NoCast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ImplicitCastCost(tt.from, tt.to))
		})
	}
}

func TestImplicitCastCost_AnyToString(t *testing.T) {
	for _, id := range AllTypeIDs() {
		if id.IsTemporal() {
			assert.GreaterOrEqual(t, ImplicitCastCost(id, VarcharType), 0, id.String())
			continue
		}
		if id.IsNumeric() {
			for _, to := range []TypeID{VarcharType, CharType, BlobType, ClobType, BinaryType} {
				assert.GreaterOrEqual(t, ImplicitCastCost(id, to), 0, "%s -> %s", id, to)
			}
		}
	}
}

func TestImplicitCastCost_Pure(t *testing.T) {
	for _, from := range AllTypeIDs() {
		for _, to := range AllTypeIDs() {
			assert.Equal(t, ImplicitCastCost(from, to), ImplicitCastCost(from, to))
		}
	}
}
