package storage

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// FixtureFile is the YAML layout of a fixture file:
//
//	tables:
//	  - name: users
//	    columns:
//	      - {name: id, type: INTEGER}
//	      - {name: name, type: VARCHAR(16)}
//	    rows:
//	      - [1, alice]
//	      - [2, null]
type FixtureFile struct {
	Tables []FixtureTable `yaml:"tables"`
}

type FixtureTable struct {
	Name    string          `yaml:"name"`
	Columns []FixtureColumn `yaml:"columns"`
	Rows    [][]any         `yaml:"rows"`
}

type FixtureColumn struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// LoadFixtures reads the fixture file at path into store.
func LoadFixtures(store *Store, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(err, "LoadFixtures")
	}
	defer f.Close()
	return LoadFixturesFrom(store, f)
}

// LoadFixturesFrom decodes YAML fixtures from r, creating one table per
// entry and inserting its rows.
//
// Returns:
//   - []string: names of the tables created, in file order
//   - error: PLANNER for malformed column types or row widths, EXECUTOR for
//     values that do not cast to their column type
func LoadFixturesFrom(store *Store, r io.Reader) ([]string, error) {
	var file FixtureFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, wrapErr(err, "LoadFixtures")
	}

	defaults := store.typeDefaults()
	names := make([]string, 0, len(file.Tables))
	for _, ft := range file.Tables {
		schema, err := ft.schema(defaults)
		if err != nil {
			return names, err
		}
		if _, err := store.CreateTable(ft.Name, schema); err != nil {
			return names, err
		}
		for i, row := range ft.Rows {
			values, err := fixtureValues(schema, row)
			if err != nil {
				return names, dberr.Wrap(err, dberr.KindExecutor.String(),
					fmt.Sprintf("LoadFixtures(%s row %d)", ft.Name, i+1), component)
			}
			if err := store.Insert(ft.Name, values...); err != nil {
				return names, err
			}
		}
		names = append(names, ft.Name)
	}
	return names, nil
}

func (ft FixtureTable) schema(defaults types.TypeDefaults) (*tuple.Schema, error) {
	if ft.Name == "" {
		return nil, dberr.New(dberr.KindPlanner, "fixture table without a name")
	}
	cols := make([]tuple.Column, len(ft.Columns))
	for i, c := range ft.Columns {
		t, err := types.ParseLogicalTypeWith(c.Type, defaults)
		if err != nil {
			return nil, dberr.Newf(dberr.KindPlanner, "fixture %s column %s: %v", ft.Name, c.Name, err)
		}
		cols[i] = tuple.Column{Name: c.Name, Table: ft.Name, Type: t}
	}
	return tuple.NewSchema(cols...), nil
}

// fixtureValues converts decoded YAML scalars to column values. A YAML null
// becomes a typed null; everything else is parsed from its text form.
func fixtureValues(schema *tuple.Schema, row []any) ([]types.Value, error) {
	if len(row) != schema.NumColumns() {
		return nil, dberr.Newf(dberr.KindPlanner, "row has %d values, table has %d columns",
			len(row), schema.NumColumns())
	}
	values := make([]types.Value, len(row))
	for i, col := range schema.Columns() {
		if row[i] == nil {
			values[i] = types.NewNull(col.Type)
			continue
		}
		// YAML resolves unquoted dates to time.Time.
		if ts, ok := row[i].(time.Time); ok {
			values[i] = types.NewTimestamp(types.TimestampFromTime(ts))
			if col.Type.ID != types.TimestampType {
				v, err := types.CastValue(values[i], col.Type)
				if err != nil {
					return nil, err
				}
				values[i] = v
			}
			continue
		}
		v, err := types.ParseValue(col.Type, fmt.Sprint(row[i]))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
