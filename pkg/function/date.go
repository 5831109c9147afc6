package function

import (
	"time"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/types"
)

func registerDates(r *Registry) {
	parts := []struct {
		name string
		part func(time.Time) int64
	}{
		{"year", func(t time.Time) int64 { return int64(t.Year()) }},
		{"month", func(t time.Time) int64 { return int64(t.Month()) }},
		{"day", func(t time.Time) int64 { return int64(t.Day()) }},
		{"hour", func(t time.Time) int64 { return int64(t.Hour()) }},
		{"minute", func(t time.Time) int64 { return int64(t.Minute()) }},
	}
	for _, p := range parts {
		part := p.part
		r.RegisterFunction(p.name, Signature{Args: []types.TypeID{types.TimestampType}, Return: types.BigInt()},
			func(args []types.Value) (types.Value, error) {
				ts, err := args[0].AsTimestamp()
				if err != nil {
					return types.Value{}, err
				}
				return types.NewBigInt(part(ts.Time())), nil
			})
	}

	r.RegisterFunction("unix_timestamp", Signature{Args: []types.TypeID{types.TimestampType}, Return: types.BigInt()},
		func(args []types.Value) (types.Value, error) {
			ts, err := args[0].AsTimestamp()
			if err != nil {
				return types.Value{}, err
			}
			return types.NewBigInt(ts.Time().Unix()), nil
		})

	r.RegisterFunction("make_date", Signature{
		Args:   []types.TypeID{types.BigIntType, types.BigIntType, types.BigIntType},
		Return: types.Date(),
	}, func(args []types.Value) (types.Value, error) {
		var ymd [3]int64
		for i := range ymd {
			n, err := args[i].AsInt64()
			if err != nil {
				return types.Value{}, err
			}
			ymd[i] = n
		}
		t := time.Date(int(ymd[0]), time.Month(ymd[1]), int(ymd[2]), 0, 0, 0, 0, time.UTC)
		if int64(t.Year()) != ymd[0] || int64(t.Month()) != ymd[1] || int64(t.Day()) != ymd[2] {
			return types.Value{}, dberr.Newf(dberr.KindOutOfRange, "invalid date %d-%d-%d", ymd[0], ymd[1], ymd[2])
		}
		return types.NewDate(types.DateFromTime(t)), nil
	})

	// datediff(a, b) counts whole days from b to a.
	r.RegisterFunction("datediff", Signature{
		Args:   []types.TypeID{types.DateType, types.DateType},
		Return: types.Integer(),
	}, func(args []types.Value) (types.Value, error) {
		a, err := args[0].AsDate()
		if err != nil {
			return types.Value{}, err
		}
		b, err := args[1].AsDate()
		if err != nil {
			return types.Value{}, err
		}
		return types.CastValue(types.NewBigInt(int64(a)-int64(b)), types.Integer())
	})
}
