// Package query holds the single-input relational operators that reorder or
// trim a row stream: SortExec, LimitExec and DistinctExec.
package query

import dberr "rowexec/pkg/error"

const component = "execution/query"

func wrapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	return dberr.Wrap(err, dberr.KindExecutor.String(), op, component)
}
