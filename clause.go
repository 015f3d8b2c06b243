package quarry

import (
	"sort"
	"strings"
)

// Cond is a field-to-value predicate mapping. Values may be scalars
// (equality), slices (IN lists) or Range values (bound comparisons).
// Entries render in sorted key order so generated SQL is deterministic.
type Cond map[string]any

func (c Cond) sortedKeys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c Cond) clone() Cond {
	nc := make(Cond, len(c))
	for k, v := range c {
		nc[k] = v
	}
	return nc
}

// fieldList renders a projection list. An empty list means wildcard.
func fieldList(fields []any) string {
	if len(fields) == 0 {
		return "*"
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = resolve(f)
	}
	return strings.Join(parts, ", ")
}

// sourceList renders the FROM sources. A dataset with no source cannot
// generate SQL; that surfaces here, at generation time.
func sourceList(sources []any) (string, error) {
	if len(sources) == 0 {
		return "", NewUsageError("no source set for dataset")
	}
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = resolve(s)
	}
	return strings.Join(parts, ", "), nil
}

// whereCondition renders a single predicate, dispatching on the shape of
// the right operand: Range lowers to bound comparisons, sequences to IN
// lists, anything else to an equality test.
func whereCondition(f *Formatter, left, right any) string {
	l := resolve(left)
	switch {
	case isRange(right):
		r := right.(Range)
		op := "<="
		if r.ExcludeEnd {
			op = "<"
		}
		return "(" + l + " >= " + f.Literal(r.Lo) + " AND " + l + " " + op + " " + f.Literal(r.Hi) + ")"
	case isSequence(right):
		return "(" + l + " IN (" + f.Literal(right) + "))"
	default:
		return "(" + l + " = " + f.Literal(right) + ")"
	}
}

func isRange(v any) bool {
	_, ok := v.(Range)
	return ok
}

// whereList renders a complete filter predicate. A Cond renders each
// entry through whereCondition joined by AND. A fragment with arguments
// substitutes each ? placeholder left to right. A bare fragment is
// trusted and passed through verbatim.
func whereList(f *Formatter, spec any, args []any) (string, error) {
	switch s := spec.(type) {
	case Cond:
		parts := make([]string, 0, len(s))
		for _, k := range s.sortedKeys() {
			parts = append(parts, whereCondition(f, k, s[k]))
		}
		return strings.Join(parts, " AND "), nil
	case Raw:
		return string(s), nil
	case string:
		if len(args) == 0 {
			return s, nil
		}
		return substitute(f, s, args)
	default:
		return "", NewUsageError("unsupported where predicate type %T", spec)
	}
}

// substitute replaces each ? in the template with the literal of the
// next argument. The pass is strictly left to right over the original
// template; substituted text is never re-scanned for placeholders.
func substitute(f *Formatter, tmpl string, args []any) (string, error) {
	var b strings.Builder
	n := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '?' {
			b.WriteByte(tmpl[i])
			continue
		}
		if n >= len(args) {
			return "", NewUsageError("not enough arguments for placeholders in %q", tmpl)
		}
		b.WriteString(f.Literal(args[n]))
		n++
	}
	if n != len(args) {
		return "", NewUsageError("%d arguments given for %d placeholders in %q", len(args), n, tmpl)
	}
	return b.String(), nil
}

// joinConds renders a join condition mapping. Keys are columns of the
// joined table, values are columns of the source table; unqualified
// names on either side are qualified with their table.
func joinConds(cond Cond, joinTable, fromTable string) string {
	parts := make([]string, 0, len(cond))
	for _, k := range cond.sortedKeys() {
		parts = append(parts, qualify(k, joinTable)+" = "+qualify(cond[k], fromTable))
	}
	return strings.Join(parts, " AND ")
}

// reverseOrder flips the direction of each order term. A term already
// carrying a DESC suffix has it stripped; every other term gains one.
// Applying it twice round-trips.
func reverseOrder(terms []any) []any {
	out := make([]any, len(terms))
	for i, t := range terms {
		s := resolve(t)
		if stripped, ok := strings.CutSuffix(s, " DESC"); ok {
			out[i] = Raw(stripped)
		} else {
			out[i] = Raw(s + " DESC")
		}
	}
	return out
}

// orderList renders the ORDER BY terms.
func orderList(terms []any) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = resolve(t)
	}
	return strings.Join(parts, ", ")
}
