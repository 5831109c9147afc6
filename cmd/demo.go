package cmd

import (
	"bytes"
	_ "embed"
	"time"

	"rowexec/pkg/database"
	"rowexec/pkg/execution"
	"rowexec/pkg/execution/aggregation"
	"rowexec/pkg/execution/join"
	"rowexec/pkg/execution/query"
	"rowexec/pkg/execution/setops"
	"rowexec/pkg/expression"
	"rowexec/pkg/iterator"
	"rowexec/pkg/logging"
	"rowexec/pkg/registry"
	"rowexec/pkg/storage"
	"rowexec/pkg/types"
	"rowexec/pkg/ui"
)

//go:embed fixtures/demo.yaml
var demoFixtures []byte

// demo is one named demonstration plan.
type demo struct {
	title string
	build database.PlanBuilder
}

// demoSession is a database loaded with fixtures plus the plans to run.
type demoSession struct {
	db      *database.Database
	demos   []demo
	parquet *storage.ParquetSource
}

// openDemoSession loads fixtures into a fresh database: the embedded demo
// tables when path is empty, the YAML file at path otherwise. A non-empty
// parquetPath registers an extra scan over that file.
func openDemoSession(path, parquetPath string) (*demoSession, error) {
	db := database.Open(cfg)
	var err error
	if path == "" {
		_, err = storage.LoadFixturesFrom(db.Store(), bytes.NewReader(demoFixtures))
	} else {
		_, err = storage.LoadFixtures(db.Store(), path)
	}
	if err != nil {
		return nil, err
	}

	s := &demoSession{db: db, demos: demoPlans(db.Store())}
	if parquetPath != "" {
		s.parquet, err = storage.NewParquetSource(parquetPath)
		if err != nil {
			return nil, err
		}
		s.demos = append(s.demos, demo{title: "parquet scan", build: parquetScan(s.parquet)})
	}
	return s, nil
}

func (s *demoSession) Close() {
	s.db.Close()
	if s.parquet != nil {
		_ = s.parquet.Close()
	}
}

// demoPlans returns the plans whose tables exist in store.
func demoPlans(store *storage.Store) []demo {
	has := func(names ...string) bool {
		for _, n := range names {
			if _, ok := store.Table(n); !ok {
				return false
			}
		}
		return true
	}

	var demos []demo
	if has("orders") {
		demos = append(demos,
			demo{title: "group by count", build: ordersPerUser},
			demo{title: "window", build: orderRank},
			demo{title: "top-n", build: largestOrders},
		)
	}
	if has("users", "orders") {
		demos = append(demos, demo{title: "left join", build: usersWithOrders})
	}
	if has("users", "archived_users") {
		demos = append(demos, demo{title: "union", build: allUsers})
	}
	return demos
}

func scanTable(store *storage.Store, name string) (*execution.ScanExec, error) {
	src, err := store.Scan(name)
	if err != nil {
		return nil, err
	}
	return execution.NewScanExec(name, src)
}

func column(plan iterator.PhysicalPlan, name string) (*expression.ColumnValue, error) {
	idx, err := plan.GetSchema().IndexOf(name)
	if err != nil {
		return nil, err
	}
	return expression.NewColumnValue(plan.GetSchema(), idx)
}

// ordersPerUser: SELECT user_id, count(*), sum(amount) FROM orders GROUP BY user_id
func ordersPerUser(ctx *registry.ExecContext, store *storage.Store) (iterator.PhysicalPlan, error) {
	orders, err := scanTable(store, "orders")
	if err != nil {
		return nil, err
	}
	userID, err := column(orders, "user_id")
	if err != nil {
		return nil, err
	}
	amount, err := column(orders, "amount")
	if err != nil {
		return nil, err
	}
	return aggregation.NewAggregateExec(ctx, orders,
		[]expression.Expression{userID},
		[]aggregation.Call{
			{Name: aggregation.CountStar},
			{Name: aggregation.Sum, Args: []expression.Expression{amount}},
		}, nil)
}

// usersWithOrders: SELECT * FROM users LEFT JOIN orders ON users.id = orders.user_id
func usersWithOrders(ctx *registry.ExecContext, store *storage.Store) (iterator.PhysicalPlan, error) {
	users, err := scanTable(store, "users")
	if err != nil {
		return nil, err
	}
	orders, err := scanTable(store, "orders")
	if err != nil {
		return nil, err
	}
	uid, err := users.GetSchema().IndexOf("id")
	if err != nil {
		return nil, err
	}
	oid, err := orders.GetSchema().IndexOf("user_id")
	if err != nil {
		return nil, err
	}
	return join.NewHashJoinExec(ctx, join.LeftJoin, users, orders, []int{uid}, []int{oid}, nil)
}

// allUsers: SELECT * FROM users UNION SELECT * FROM archived_users
func allUsers(ctx *registry.ExecContext, store *storage.Store) (iterator.PhysicalPlan, error) {
	users, err := scanTable(store, "users")
	if err != nil {
		return nil, err
	}
	archived, err := scanTable(store, "archived_users")
	if err != nil {
		return nil, err
	}
	return setops.NewUnionExec(ctx, setops.SetUnion, false, users, archived, nil)
}

// orderRank: SELECT *, row_number() OVER (PARTITION BY user_id ORDER BY amount DESC) FROM orders
func orderRank(ctx *registry.ExecContext, store *storage.Store) (iterator.PhysicalPlan, error) {
	orders, err := scanTable(store, "orders")
	if err != nil {
		return nil, err
	}
	schema := orders.GetSchema()
	userID, err := schema.IndexOf("user_id")
	if err != nil {
		return nil, err
	}
	amount, err := schema.IndexOf("amount")
	if err != nil {
		return nil, err
	}
	return execution.NewWindowExec(ctx, orders, schema.NumColumns(), execution.WindowSpec{
		Frame:       execution.RowsFrame,
		PartitionBy: []int{userID},
		OrderBy:     []execution.WindowSortItem{{Column: amount, Desc: true}},
	})
}

// largestOrders: SELECT * FROM orders ORDER BY amount DESC LIMIT 3
func largestOrders(ctx *registry.ExecContext, store *storage.Store) (iterator.PhysicalPlan, error) {
	orders, err := scanTable(store, "orders")
	if err != nil {
		return nil, err
	}
	amount, err := column(orders, "amount")
	if err != nil {
		return nil, err
	}
	sorted, err := query.NewSortExec(ctx, orders, []execution.SortKey{{Expr: amount, Desc: true}})
	if err != nil {
		return nil, err
	}
	return query.NewLimitExec(sorted, expression.NewConstant(types.NewBigInt(3)), nil)
}

// parquetScan returns the first rows of a Parquet file.
func parquetScan(src *storage.ParquetSource) database.PlanBuilder {
	return func(_ *registry.ExecContext, _ *storage.Store) (iterator.PhysicalPlan, error) {
		src.ResetNext()
		scan, err := execution.NewScanExec("", src)
		if err != nil {
			return nil, err
		}
		return query.NewLimitExec(scan, expression.NewConstant(types.NewBigInt(20)), nil)
	}
}

// runDemos executes every demo on its own connection and collects the
// panels, recording plan text and timing. Failures end up on the panel.
func runDemos(db *database.Database, demos []demo) []ui.Panel {
	log := logging.WithComponent("cmd")
	panels := make([]ui.Panel, 0, len(demos))
	for _, d := range demos {
		panels = append(panels, runDemo(db, d))
		log.Debug("demo finished", "title", d.title)
	}
	return panels
}

func runDemo(db *database.Database, d demo) ui.Panel {
	conn := db.Connect()
	defer conn.Close()

	panel := ui.Panel{Title: d.title}
	start := time.Now()
	plan, err := d.build(conn.Context(), db.Store())
	if err != nil {
		panel.Err = err
		return panel
	}
	panel.Plan = ui.Explain(plan)
	panel.Result, panel.Err = database.Materialize(conn.Query(plan))
	panel.Duration = time.Since(start)
	return panel
}
