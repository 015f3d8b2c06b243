package quarry

import (
	"context"
	"sort"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/quarry/dialect"
	"github.com/syssam/quarry/dialect/sql"
)

// Hooks are lifecycle callbacks around record persistence. Nil hooks are
// skipped. A hook returning an error aborts the operation; destroy hooks
// run inside the destroy transaction, so an error rolls it back.
type Hooks struct {
	BeforeSave    func(ctx context.Context, r *Record) error
	AfterSave     func(ctx context.Context, r *Record) error
	BeforeCreate  func(ctx context.Context, r *Record) error
	AfterCreate   func(ctx context.Context, r *Record) error
	BeforeUpdate  func(ctx context.Context, r *Record) error
	AfterUpdate   func(ctx context.Context, r *Record) error
	BeforeDestroy func(ctx context.Context, r *Record) error
	AfterDestroy  func(ctx context.Context, r *Record) error
}

// Model describes a mapped table: its name, primary key policy,
// validator and hooks. It is configured once and then shared; per-row
// state lives in Record.
type Model struct {
	name     string
	table    string
	pk       []string // nil in no-primary-key mode
	drv      dialect.Driver
	fmtr     *Formatter
	validate func(r *Record) error
	hooks    Hooks
}

// ModelOption configures a Model.
type ModelOption func(*modelConfig)

type modelConfig struct {
	table    string
	pk       []string
	noPK     bool
	pkSet    bool
	fmtr     *Formatter
	validate func(r *Record) error
	hooks    Hooks
}

// Table overrides the inferred table name.
func Table(name string) ModelOption {
	return func(c *modelConfig) { c.table = name }
}

// PrimaryKey sets the primary key column, or a composite key when more
// than one column is given.
func PrimaryKey(cols ...string) ModelOption {
	return func(c *modelConfig) { c.pk = cols; c.pkSet = true }
}

// NoPrimaryKey puts the model in no-primary-key mode: operations that
// need persistence identity fail with an IntegrityError.
func NoPrimaryKey() ModelOption {
	return func(c *modelConfig) { c.noPK = true }
}

// Validator sets the record validator. Save consults it and returns a
// ValidationError without issuing SQL when it rejects; ForceSave
// never consults it.
func Validator(fn func(r *Record) error) ModelOption {
	return func(c *modelConfig) { c.validate = fn }
}

// WithHooks sets the lifecycle hooks.
func WithHooks(h Hooks) ModelOption {
	return func(c *modelConfig) { c.hooks = h }
}

// ModelFormatter sets the literal formatter, normally the one exported
// by the dialect adapter in use.
func ModelFormatter(f *Formatter) ModelOption {
	return func(c *modelConfig) { c.fmtr = f }
}

// NewModel creates a model for the given name bound to the driver. The
// table name defaults to the underscored plural of the model name, and
// the primary key defaults to the id column.
func NewModel(name string, drv dialect.Driver, opts ...ModelOption) (*Model, error) {
	c := &modelConfig{fmtr: defaultFormatter}
	for _, opt := range opts {
		opt(c)
	}
	if c.noPK && c.pkSet {
		return nil, NewUsageError("model %s: NoPrimaryKey conflicts with PrimaryKey", name)
	}
	if c.pkSet && len(c.pk) == 0 {
		return nil, NewUsageError("model %s: PrimaryKey requires at least one column", name)
	}
	m := &Model{
		name:     name,
		table:    c.table,
		drv:      drv,
		fmtr:     c.fmtr,
		validate: c.validate,
		hooks:    c.hooks,
	}
	if m.table == "" {
		m.table = inflect.Pluralize(inflect.Underscore(name))
	}
	switch {
	case c.noPK:
		m.pk = nil
	case c.pkSet:
		m.pk = append([]string(nil), c.pk...)
	default:
		m.pk = []string{"id"}
	}
	return m, nil
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// TableName returns the mapped table.
func (m *Model) TableName() string { return m.table }

// PrimaryKey returns the primary key columns, nil in no-primary-key mode.
func (m *Model) PrimaryKey() []string {
	return append([]string(nil), m.pk...)
}

// Dataset returns the model's dataset, scoped to its table and bound to
// its record constructor.
func (m *Model) Dataset() *Dataset {
	return NewDataset(m.drv).WithFormatter(m.fmtr).From(m.table).Bind(func(r Row) Destroyer {
		return m.Load(r)
	})
}

// New returns an unsaved record with the given initial values. All
// initial values count as changed.
func (m *Model) New(values Row) *Record {
	r := &Record{model: m, values: make(Row, len(values)), changed: make(map[string]struct{}, len(values)), isNew: true}
	for k, v := range values {
		r.values[k] = v
		r.changed[k] = struct{}{}
	}
	return r
}

// Load wraps an already-persisted row in a record. Nothing is marked
// changed.
func (m *Model) Load(values Row) *Record {
	r := &Record{model: m, values: make(Row, len(values)), changed: make(map[string]struct{})}
	for k, v := range values {
		r.values[k] = v
	}
	return r
}

// Find returns the first record matching the condition, or ErrNotFound
// when none matches.
func (m *Model) Find(ctx context.Context, cond Cond) (*Record, error) {
	row, err := m.Dataset().Where(cond).First(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, NewNotFoundError(m.table)
	}
	return m.Load(row), nil
}

// Get returns the record with the given primary key value(s).
func (m *Model) Get(ctx context.Context, pkVals ...any) (*Record, error) {
	cond, err := m.pkCond(pkVals)
	if err != nil {
		return nil, err
	}
	return m.Find(ctx, cond)
}

func (m *Model) pkCond(pkVals []any) (Cond, error) {
	if len(m.pk) == 0 {
		return nil, NewIntegrityError(m.name, "get")
	}
	if len(pkVals) != len(m.pk) {
		return nil, NewUsageError("model %s: %d primary key values given, want %d", m.name, len(pkVals), len(m.pk))
	}
	cond := make(Cond, len(m.pk))
	for i, col := range m.pk {
		cond[col] = pkVals[i]
	}
	return cond, nil
}

// Record is one mutable row bound to a model: an attribute bag, the set
// of changed columns, and a memoized dataset scoped to the row's
// primary key.
type Record struct {
	model   *Model
	values  Row
	changed map[string]struct{}
	isNew   bool
	this    *Dataset
}

// Model returns the record's model.
func (r *Record) Model() *Model { return r.model }

// New reports whether the record has not been persisted yet.
func (r *Record) New() bool { return r.isNew }

// Get returns the value of the given column.
func (r *Record) Get(col string) any {
	return r.values[col]
}

// Set assigns the column and marks it changed.
func (r *Record) Set(col string, v any) {
	r.values[col] = v
	r.changed[col] = struct{}{}
}

// Values returns a copy of the record's attribute bag.
func (r *Record) Values() Row {
	out := make(Row, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Changed returns the sorted names of columns modified since the record
// was loaded or last saved.
func (r *Record) Changed() []string {
	cols := make([]string, 0, len(r.changed))
	for c := range r.changed {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// PKValues returns the record's primary key values in key-column order.
func (r *Record) PKValues() ([]any, error) {
	if len(r.model.pk) == 0 {
		return nil, NewIntegrityError(r.model.name, "pk")
	}
	vals := make([]any, len(r.model.pk))
	for i, col := range r.model.pk {
		v, ok := r.values[col]
		if !ok || v == nil {
			return nil, NewIntegrityError(r.model.name, "pk")
		}
		vals[i] = v
	}
	return vals, nil
}

// PK returns the primary key value, or the slice of values for a
// composite key.
func (r *Record) PK() (any, error) {
	vals, err := r.PKValues()
	if err != nil {
		return nil, err
	}
	if len(vals) == 1 {
		return vals[0], nil
	}
	return vals, nil
}

// CacheKey returns a stable cache identity for the record, derived from
// its table and primary key.
func (r *Record) CacheKey() (string, error) {
	vals, err := r.PKValues()
	if err != nil {
		return "", err
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = defaultFormatter.Literal(v)
	}
	return r.model.table + ":" + strings.Join(parts, ","), nil
}

// This returns the record's scoped dataset: the model's dataset filtered
// by the record's primary key and limited to one row. It is memoized.
func (r *Record) This() (*Dataset, error) {
	if r.this != nil {
		return r.this, nil
	}
	vals, err := r.PKValues()
	if err != nil {
		return nil, err
	}
	cond := make(Cond, len(vals))
	for i, col := range r.model.pk {
		cond[col] = vals[i]
	}
	r.this = r.model.Dataset().Where(cond).Limit(1)
	return r.this, nil
}

// Save validates and persists the record: an insert for a new record, a
// full update otherwise. A validator rejection returns a ValidationError
// and issues no SQL.
func (r *Record) Save(ctx context.Context) error {
	return r.save(ctx, true)
}

// ForceSave persists the record without consulting the validator.
func (r *Record) ForceSave(ctx context.Context) error {
	return r.save(ctx, false)
}

func (r *Record) save(ctx context.Context, validate bool) error {
	if validate && r.model.validate != nil {
		if err := r.model.validate(r); err != nil {
			return NewValidationError(r.model.name, err)
		}
	}
	if err := r.runHook(ctx, r.model.hooks.BeforeSave); err != nil {
		return err
	}
	if r.isNew {
		if err := r.insert(ctx); err != nil {
			return err
		}
	} else {
		if err := r.update(ctx, r.values); err != nil {
			return err
		}
	}
	r.clearChanged()
	return r.runHook(ctx, r.model.hooks.AfterSave)
}

func (r *Record) insert(ctx context.Context) error {
	if err := r.runHook(ctx, r.model.hooks.BeforeCreate); err != nil {
		return err
	}
	id, err := r.model.Dataset().Insert(ctx, Cond(r.values))
	if err != nil {
		return err
	}
	r.isNew = false
	// Populate a generated single-column key from the driver's reported
	// last insert id, then reload the row as stored.
	if len(r.model.pk) == 1 {
		if v, ok := r.values[r.model.pk[0]]; !ok || v == nil {
			if id != 0 {
				r.values[r.model.pk[0]] = id
			}
		}
	}
	if len(r.model.pk) > 0 {
		if _, err := r.PKValues(); err == nil {
			if err := r.Refresh(ctx); err != nil {
				return err
			}
		}
	}
	return r.runHook(ctx, r.model.hooks.AfterCreate)
}

func (r *Record) update(ctx context.Context, values Row) error {
	if err := r.runHook(ctx, r.model.hooks.BeforeUpdate); err != nil {
		return err
	}
	ds, err := r.This()
	if err != nil {
		return err
	}
	if _, err := ds.Update(ctx, Cond(values)); err != nil {
		return err
	}
	return r.runHook(ctx, r.model.hooks.AfterUpdate)
}

// SaveChanges persists only the changed columns, or does nothing when
// the record is clean. A new record is saved in full.
func (r *Record) SaveChanges(ctx context.Context) error {
	if r.isNew {
		return r.Save(ctx)
	}
	if len(r.changed) == 0 {
		return nil
	}
	values := make(Row, len(r.changed))
	for col := range r.changed {
		values[col] = r.values[col]
	}
	if err := r.update(ctx, values); err != nil {
		return err
	}
	r.clearChanged()
	return nil
}

// Refresh reloads the record's values from storage, clearing the changed
// set. It returns a NotFoundError when the row no longer exists.
func (r *Record) Refresh(ctx context.Context) error {
	ds, err := r.This()
	if err != nil {
		return err
	}
	row, err := ds.First(ctx)
	if err != nil {
		return err
	}
	if row == nil {
		return NewNotFoundError(r.model.table)
	}
	r.values = row
	r.clearChanged()
	return nil
}

// Delete removes the record's row without running destroy hooks.
func (r *Record) Delete(ctx context.Context) error {
	ds, err := r.This()
	if err != nil {
		return err
	}
	_, err = ds.Delete(ctx)
	return err
}

// Destroy removes the record inside a transaction, running the destroy
// hooks around the delete. A hook or delete failure rolls everything
// back.
func (r *Record) Destroy(ctx context.Context) error {
	return sql.Transaction(ctx, r.model.drv, func(ctx context.Context, _ dialect.ExecQuerier) error {
		if err := r.runHook(ctx, r.model.hooks.BeforeDestroy); err != nil {
			return err
		}
		if err := r.Delete(ctx); err != nil {
			return err
		}
		return r.runHook(ctx, r.model.hooks.AfterDestroy)
	})
}

func (r *Record) runHook(ctx context.Context, h func(ctx context.Context, r *Record) error) error {
	if h == nil {
		return nil
	}
	return h(ctx, r)
}

func (r *Record) clearChanged() {
	r.changed = make(map[string]struct{})
}
