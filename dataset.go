package quarry

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/quarry/dialect"
	"github.com/syssam/quarry/dialect/sql"
)

// Row is a mapping from column name to value for one fetched record.
// Rows are transient: they exist during iteration or materialization and
// carry no connection state.
type Row map[string]any

// RecordFunc constructs a bound record from a fetched row.
type RecordFunc func(Row) Destroyer

// Destroyer is a bound record that can remove itself from storage,
// running its lifecycle hooks.
type Destroyer interface {
	Destroy(ctx context.Context) error
}

// Dataset is a lazy, immutable query representation bound to an
// execution driver. Configuring operations return a new Dataset and
// never mutate the receiver; terminal operations generate SQL and hand
// it to the driver. Iterating a dataset re-issues its query each time,
// so a stored dataset always reflects current database state.
type Dataset struct {
	drv    dialect.ExecQuerier
	fmtr   *Formatter
	spec   querySpec
	record RecordFunc
}

// NewDataset returns a dataset bound to the given driver. The driver may
// be nil for pure SQL generation.
func NewDataset(drv dialect.ExecQuerier) *Dataset {
	return &Dataset{drv: drv, fmtr: defaultFormatter}
}

// clone copies the dataset with a fresh spec, applies the mutation to
// the copy, and returns it.
func (d *Dataset) clone(mutate func(*querySpec)) *Dataset {
	nd := *d
	nd.spec = d.spec.clone()
	mutate(&nd.spec)
	return &nd
}

// WithFormatter returns a dataset rendering literals with the given
// formatter. Adapters supply dialect-specific formatters.
func (d *Dataset) WithFormatter(f *Formatter) *Dataset {
	nd := *d
	nd.spec = d.spec.clone()
	nd.fmtr = f
	return &nd
}

// Bind returns a dataset whose rows materialize through the given record
// constructor. Destroy requires a bound dataset.
func (d *Dataset) Bind(fn RecordFunc) *Dataset {
	nd := *d
	nd.spec = d.spec.clone()
	nd.record = fn
	return &nd
}

// From sets the source table or tables.
func (d *Dataset) From(sources ...any) *Dataset {
	return d.clone(func(q *querySpec) { q.from = sources })
}

// Select sets the projected fields. No fields means wildcard.
func (d *Dataset) Select(fields ...any) *Dataset {
	return d.clone(func(q *querySpec) { q.sel = fields })
}

// Order sets the ORDER BY terms.
func (d *Dataset) Order(terms ...any) *Dataset {
	return d.clone(func(q *querySpec) { q.order = terms })
}

// Limit caps the number of returned rows.
func (d *Dataset) Limit(n int) *Dataset {
	return d.clone(func(q *querySpec) { q.limit = n; q.hasLimit = true })
}

// Where sets the filter predicate. When both the existing and the new
// predicate are Cond mappings the two merge, with new keys overriding
// old ones; any other predicate shape replaces the filter outright.
//
//	ds.Where(Cond{"a": 1}).Where(Cond{"b": 2}) // (a = 1) AND (b = 2)
//	ds.Where(Cond{"a": 1}).Where("b = 2")      // b = 2
//
// A string predicate with arguments substitutes each ? placeholder with
// the literal of the next argument; without arguments it is passed
// through verbatim.
func (d *Dataset) Where(spec any, args ...any) *Dataset {
	return d.clone(func(q *querySpec) {
		if c, ok := spec.(Cond); ok && len(args) == 0 {
			if q.where != nil && q.where.cond != nil {
				merged := q.where.cond.clone()
				for k, v := range c {
					merged[k] = v
				}
				q.where = &whereSpec{cond: merged}
				return
			}
			q.where = &whereSpec{cond: c.clone()}
			return
		}
		switch s := spec.(type) {
		case Raw:
			q.where = &whereSpec{frag: string(s)}
		case string:
			q.where = &whereSpec{frag: s, args: args}
		default:
			// Rejected at generation time with a UsageError.
			q.where = &whereSpec{invalid: spec}
		}
	})
}

// Join adds a LEFT OUTER join against the given table. The condition
// maps columns of the joined table to columns of the source table.
func (d *Dataset) Join(table any, cond Cond) *Dataset {
	return d.JoinTable(LeftOuterJoin, table, cond)
}

// JoinTable adds a join of the given type.
func (d *Dataset) JoinTable(typ JoinType, table any, cond Cond) *Dataset {
	return d.clone(func(q *querySpec) {
		q.join = &joinSpec{typ: typ, table: table, cond: cond.clone()}
	})
}

// SelectSQL generates the SELECT statement for the dataset. Clauses are
// emitted in fixed order and absent clauses are omitted entirely.
func (d *Dataset) SelectSQL() (string, error) {
	return d.buildSelect(d.spec)
}

func (d *Dataset) buildSelect(q querySpec) (string, error) {
	src, err := sourceList(q.from)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(fieldList(q.sel))
	b.WriteString(" FROM ")
	b.WriteString(src)
	if q.join != nil {
		joined := resolve(q.join.table)
		fmt.Fprintf(&b, " %s JOIN %s ON (%s)", q.join.typ, joined, joinConds(q.join.cond, joined, resolve(q.from[0])))
	}
	if q.where != nil {
		w, err := d.whereClause(q.where)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(w)
	}
	if len(q.order) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(orderList(q.order))
	}
	if q.hasLimit {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.limit))
	}
	return b.String(), nil
}

func (d *Dataset) whereClause(w *whereSpec) (string, error) {
	if w.invalid != nil {
		return "", NewUsageError("unsupported where predicate type %T", w.invalid)
	}
	if w.cond != nil {
		return whereList(d.fmtr, w.cond, nil)
	}
	return whereList(d.fmtr, w.frag, w.args)
}

// InsertSQL generates an INSERT statement for the given values. Empty
// values produce an INSERT ... DEFAULT VALUES form. Columns render in
// sorted order so generated SQL is deterministic.
func (d *Dataset) InsertSQL(values Cond) (string, error) {
	src, err := sourceList(d.spec.from)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "INSERT INTO " + src + " DEFAULT VALUES", nil
	}
	keys := values.sortedKeys()
	cols := make([]string, len(keys))
	vals := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = resolve(k)
		vals[i] = d.fmtr.Literal(values[k])
	}
	return "INSERT INTO " + src + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(vals, ", ") + ")", nil
}

// UpdateSQL generates an UPDATE statement setting the given values,
// constrained by the dataset's filter when one is set.
func (d *Dataset) UpdateSQL(values Cond) (string, error) {
	src, err := sourceList(d.spec.from)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", NewUsageError("no values given for update")
	}
	keys := values.sortedKeys()
	sets := make([]string, len(keys))
	for i, k := range keys {
		sets[i] = resolve(k) + " = " + d.fmtr.Literal(values[k])
	}
	stmt := "UPDATE " + src + " SET " + strings.Join(sets, ", ")
	if d.spec.where != nil {
		w, err := d.whereClause(d.spec.where)
		if err != nil {
			return "", err
		}
		stmt += " WHERE " + w
	}
	return stmt, nil
}

// DeleteSQL generates a DELETE statement constrained by the dataset's
// filter when one is set.
func (d *Dataset) DeleteSQL() (string, error) {
	src, err := sourceList(d.spec.from)
	if err != nil {
		return "", err
	}
	stmt := "DELETE FROM " + src
	if d.spec.where != nil {
		w, err := d.whereClause(d.spec.where)
		if err != nil {
			return "", err
		}
		stmt += " WHERE " + w
	}
	return stmt, nil
}

// CountSQL generates the COUNT query for the dataset: the select list is
// forced to COUNT(*) and any order is suppressed.
func (d *Dataset) CountSQL() (string, error) {
	q := d.spec.clone()
	q.sel = []any{Raw("COUNT(*)")}
	q.order = nil
	return d.buildSelect(q)
}

// Each fetches the dataset's rows and invokes fn once per row, in result
// order. The query is re-issued on every call.
func (d *Dataset) Each(ctx context.Context, fn func(Row) error) error {
	query, err := d.SelectSQL()
	if err != nil {
		return err
	}
	return d.fetchRows(ctx, query, fn)
}

// querier returns the execution target for the call: the transaction
// carried by the context when one is open, the dataset's driver
// otherwise. Statements issued inside a Transaction body thereby join
// the open transaction instead of running outside it.
func (d *Dataset) querier(ctx context.Context) dialect.ExecQuerier {
	if tx, ok := sql.TxFromContext(ctx); ok {
		return tx
	}
	return d.drv
}

func (d *Dataset) fetchRows(ctx context.Context, query string, fn func(Row) error) error {
	drv := d.querier(ctx)
	if drv == nil {
		return NewUsageError("dataset has no driver")
	}
	var rows sql.Rows
	if err := drv.Query(ctx, query, []any{}, &rows); err != nil {
		return err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = vals[i]
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// All eagerly collects every row of the dataset.
func (d *Dataset) All(ctx context.Context) ([]Row, error) {
	var out []Row
	if err := d.Each(ctx, func(r Row) error {
		out = append(out, r)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// First returns the first row, or nil when the dataset is empty.
func (d *Dataset) First(ctx context.Context) (Row, error) {
	rows, err := d.FirstN(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FirstN returns up to n rows from the front of the dataset.
func (d *Dataset) FirstN(ctx context.Context, n int) ([]Row, error) {
	return d.Limit(n).All(ctx)
}

// Last returns the last row under the dataset's order, or nil when the
// dataset is empty. An order must be set.
func (d *Dataset) Last(ctx context.Context) (Row, error) {
	rows, err := d.LastN(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// LastN returns up to n rows from the back of the dataset by reversing
// its order. Calling it without an order set is a usage error.
func (d *Dataset) LastN(ctx context.Context, n int) ([]Row, error) {
	if len(d.spec.order) == 0 {
		return nil, NewUsageError("last requires an order to be set")
	}
	return d.Order(reverseOrder(d.spec.order)...).Limit(n).All(ctx)
}

// Find filters by the given condition and returns the first match.
func (d *Dataset) Find(ctx context.Context, cond Cond) (Row, error) {
	return d.Where(cond).First(ctx)
}

// Count executes the COUNT query and returns the scalar.
func (d *Dataset) Count(ctx context.Context) (int64, error) {
	query, err := d.CountSQL()
	if err != nil {
		return 0, err
	}
	v, err := d.firstScalar(ctx, query)
	if err != nil {
		return 0, err
	}
	return toInt64(v)
}

// Min returns the minimum value of the given field.
func (d *Dataset) Min(ctx context.Context, field any) (any, error) {
	return d.aggregate(ctx, Min(field))
}

// Max returns the maximum value of the given field.
func (d *Dataset) Max(ctx context.Context, field any) (any, error) {
	return d.aggregate(ctx, Max(field))
}

// Sum returns the sum of the given field.
func (d *Dataset) Sum(ctx context.Context, field any) (any, error) {
	return d.aggregate(ctx, Sum(field))
}

func (d *Dataset) aggregate(ctx context.Context, expr Raw) (any, error) {
	q := d.spec.clone()
	q.sel = []any{expr}
	query, err := d.buildSelect(q)
	if err != nil {
		return nil, err
	}
	return d.firstScalar(ctx, query)
}

// firstScalar fetches the first column of the first row of the query.
func (d *Dataset) firstScalar(ctx context.Context, query string) (any, error) {
	var out any
	err := d.fetchRows(ctx, query, func(r Row) error {
		for _, v := range r {
			out = v
			break
		}
		return errStopIteration
	})
	if err != nil && err != errStopIteration {
		return nil, err
	}
	return out, nil
}

// errStopIteration terminates row fetching early. Never escapes.
var errStopIteration = fmt.Errorf("quarry: stop iteration")

// HashColumn materializes the dataset into a mapping from each row's
// keyField value to its valueField value. Later rows win on duplicates.
func (d *Dataset) HashColumn(ctx context.Context, keyField, valueField any) (map[any]any, error) {
	key, val := resolve(keyField), resolve(valueField)
	out := make(map[any]any)
	err := d.Select(keyField, valueField).Each(ctx, func(r Row) error {
		out[r[columnName(key)]] = r[columnName(val)]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// columnName maps a resolved identifier to the key its value is fetched
// under: the alias when one is set, otherwise the bare column name.
func columnName(s string) string {
	if i := strings.LastIndex(s, " AS "); i >= 0 {
		return s[i+4:]
	}
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Insert executes an INSERT with the given values and returns the last
// inserted id, when the driver reports one.
func (d *Dataset) Insert(ctx context.Context, values Cond) (int64, error) {
	query, err := d.InsertSQL(values)
	if err != nil {
		return 0, err
	}
	res, err := d.exec(ctx, query)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		// Not every driver reports insert ids.
		return 0, nil
	}
	return id, nil
}

// Update executes an UPDATE with the given values and returns the number
// of affected rows.
func (d *Dataset) Update(ctx context.Context, values Cond) (int64, error) {
	query, err := d.UpdateSQL(values)
	if err != nil {
		return 0, err
	}
	res, err := d.exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete executes a DELETE and returns the number of affected rows.
func (d *Dataset) Delete(ctx context.Context) (int64, error) {
	query, err := d.DeleteSQL()
	if err != nil {
		return 0, err
	}
	res, err := d.exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *Dataset) exec(ctx context.Context, query string) (sql.Result, error) {
	drv := d.querier(ctx)
	if drv == nil {
		return nil, NewUsageError("dataset has no driver")
	}
	var res sql.Result
	if err := drv.Exec(ctx, query, []any{}, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Destroy materializes every row through the bound record constructor
// and destroys each record, all inside a single transaction. The dataset
// must be bound and its driver must support transactions.
func (d *Dataset) Destroy(ctx context.Context) (int, error) {
	if d.record == nil {
		return 0, NewUsageError("destroy requires a dataset bound to a record type")
	}
	rows, err := d.All(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	destroy := func(ctx context.Context) error {
		for _, r := range rows {
			if err := d.record(r).Destroy(ctx); err != nil {
				return err
			}
			n++
		}
		return nil
	}
	if drv, ok := d.drv.(dialect.Driver); ok {
		err = sql.Transaction(ctx, drv, func(ctx context.Context, _ dialect.ExecQuerier) error {
			return destroy(ctx)
		})
	} else {
		// Already inside a transaction scope.
		err = destroy(ctx)
	}
	if err != nil {
		return n, err
	}
	return n, nil
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("quarry: cannot convert %T to int64", v)
	}
}
