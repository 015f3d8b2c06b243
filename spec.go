package quarry

// JoinType enumerates the supported join forms.
type JoinType string

// Join types.
const (
	LeftOuterJoin  JoinType = "LEFT OUTER"
	InnerJoin      JoinType = "INNER"
	RightOuterJoin JoinType = "RIGHT OUTER"
	FullOuterJoin  JoinType = "FULL OUTER"
)

// whereSpec holds one of the three filter predicate shapes: a Cond
// mapping, a fragment with placeholder arguments, or a bare fragment.
type whereSpec struct {
	cond    Cond
	frag    string
	args    []any
	invalid any // unsupported predicate, reported at generation time
}

func (w *whereSpec) clone() *whereSpec {
	if w == nil {
		return nil
	}
	nw := &whereSpec{frag: w.frag, invalid: w.invalid}
	if w.cond != nil {
		nw.cond = w.cond.clone()
	}
	if w.args != nil {
		nw.args = append([]any(nil), w.args...)
	}
	return nw
}

// joinSpec describes a single join descriptor.
type joinSpec struct {
	typ   JoinType
	table any
	cond  Cond
}

func (j *joinSpec) clone() *joinSpec {
	if j == nil {
		return nil
	}
	return &joinSpec{typ: j.typ, table: j.table, cond: j.cond.clone()}
}

// querySpec is the dataset's option set. It is never mutated in place;
// every configuring operation clones it and overrides keys on the copy,
// so datasets sharing a prefix never observably affect each other.
type querySpec struct {
	from     []any
	sel      []any
	where    *whereSpec
	order    []any
	limit    int
	hasLimit bool
	join     *joinSpec
}

func (q querySpec) clone() querySpec {
	nq := q
	if q.from != nil {
		nq.from = append([]any(nil), q.from...)
	}
	if q.sel != nil {
		nq.sel = append([]any(nil), q.sel...)
	}
	if q.order != nil {
		nq.order = append([]any(nil), q.order...)
	}
	nq.where = q.where.clone()
	nq.join = q.join.clone()
	return nq
}
