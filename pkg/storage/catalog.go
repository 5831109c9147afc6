package storage

import (
	"fmt"
	"strings"

	"rowexec/pkg/iterator"
)

// Catalog action kinds understood by Store.Execute.
const (
	ActionCreateTable = "CREATE_TABLE"
	ActionDropTable   = "DROP_TABLE"
	ActionTruncate    = "TRUNCATE"
)

// Status codes returned in iterator.CatalogStatus.
const (
	StatusOK = iota
	StatusTableExists
	StatusTableMissing
	StatusInvalidAction
)

// Execute implements iterator.Catalog over the store's tables.
func (s *Store) Execute(action iterator.CatalogAction) iterator.CatalogStatus {
	switch strings.ToUpper(action.Kind) {
	case ActionCreateTable:
		if action.Schema == nil {
			return iterator.CatalogStatus{Code: StatusInvalidAction, Message: "CREATE_TABLE requires a schema"}
		}
		if _, err := s.CreateTable(action.Object, action.Schema); err != nil {
			if action.IfExists {
				return iterator.CatalogStatus{Code: StatusOK}
			}
			return iterator.CatalogStatus{Code: StatusTableExists, Message: err.Error()}
		}
		return iterator.CatalogStatus{Code: StatusOK}

	case ActionDropTable:
		n, err := s.DropTable(action.Object)
		if err != nil {
			if action.IfExists {
				return iterator.CatalogStatus{Code: StatusOK}
			}
			return iterator.CatalogStatus{Code: StatusTableMissing, Message: err.Error()}
		}
		return iterator.CatalogStatus{Code: StatusOK, EffectRows: int64(n)}

	case ActionTruncate:
		t, ok := s.Table(action.Object)
		if !ok {
			return iterator.CatalogStatus{
				Code:    StatusTableMissing,
				Message: fmt.Sprintf("table %s does not exist", action.Object),
			}
		}
		return iterator.CatalogStatus{Code: StatusOK, EffectRows: int64(s.truncate(t))}

	default:
		return iterator.CatalogStatus{
			Code:    StatusInvalidAction,
			Message: fmt.Sprintf("unsupported catalog action %q", action.Kind),
		}
	}
}
