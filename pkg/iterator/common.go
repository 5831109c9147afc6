package iterator

import "rowexec/pkg/tuple"

// RowStream is anything that yields rows through the pull contract; both
// PhysicalPlan and DataSource qualify.
type RowStream interface {
	Next() (rec *tuple.Record, cur Cursor, eof bool, err error)
}

// Iterate drives stream to completion, handing each row to processFunc.
// processFunc stops the loop early by returning false.
func Iterate(stream RowStream, processFunc func(*tuple.Record) (continueLooping bool, err error)) error {
	for {
		rec, _, eof, err := stream.Next()
		if err != nil {
			return err
		}
		if eof {
			return nil
		}
		if rec == nil {
			continue
		}

		shouldContinue, err := processFunc(rec)
		if err != nil {
			return err
		}
		if !shouldContinue {
			return nil
		}
	}
}

// ForEach applies processFunc to every row.
func ForEach(stream RowStream, processFunc func(*tuple.Record) error) error {
	return Iterate(stream, func(rec *tuple.Record) (bool, error) {
		return true, processFunc(rec)
	})
}

// Take returns up to n rows.
func Take(stream RowStream, n int) ([]*tuple.Record, error) {
	if n <= 0 {
		return nil, nil
	}
	rows := make([]*tuple.Record, 0, n)
	err := Iterate(stream, func(rec *tuple.Record) (bool, error) {
		rows = append(rows, rec)
		return len(rows) < n, nil
	})
	return rows, err
}

// Reduce folds every row into an accumulator.
func Reduce[T any](stream RowStream, initial T, accumulator func(T, *tuple.Record) (T, error)) (T, error) {
	result := initial
	err := Iterate(stream, func(rec *tuple.Record) (bool, error) {
		var err error
		result, err = accumulator(result, rec)
		return true, err
	})
	return result, err
}

// Count consumes the stream and returns how many rows it produced.
func Count(stream RowStream) (int, error) {
	return Reduce(stream, 0, func(count int, _ *tuple.Record) (int, error) {
		return count + 1, nil
	})
}

// Collect consumes the stream into a slice.
func Collect(stream RowStream) ([]*tuple.Record, error) {
	var rows []*tuple.Record
	err := Iterate(stream, func(rec *tuple.Record) (bool, error) {
		rows = append(rows, rec)
		return true, nil
	})
	return rows, err
}
