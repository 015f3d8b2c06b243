package quarry

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Range is an interval predicate value. Used as the right-hand side of a
// Cond entry it lowers to a pair of bound comparisons:
//
//	Cond{"age": Range{Lo: 18, Hi: 30}}                   // (age >= 18 AND age <= 30)
//	Cond{"age": Range{Lo: 18, Hi: 30, ExcludeEnd: true}} // (age >= 18 AND age < 30)
type Range struct {
	Lo, Hi     any
	ExcludeEnd bool
}

// Formatter renders Go values into SQL literal text. The zero value
// implements the base policy; adapters override the hooks for
// dialect-specific quoting and formatting rules.
type Formatter struct {
	// QuoteString renders a string literal. The default wraps the value
	// in single quotes and doubles embedded quotes.
	QuoteString func(s string) string

	// FormatBool renders a boolean literal. The default emits TRUE/FALSE.
	FormatBool func(b bool) string

	// FormatTime renders a time literal. The default emits a quoted
	// '2006-01-02 15:04:05' timestamp in the value's location.
	FormatTime func(t time.Time) string
}

// defaultFormatter is used by datasets constructed without an explicit one.
var defaultFormatter = &Formatter{}

func (f *Formatter) quoteString(s string) string {
	if f != nil && f.QuoteString != nil {
		return f.QuoteString(s)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (f *Formatter) formatBool(b bool) string {
	if f != nil && f.FormatBool != nil {
		return f.FormatBool(b)
	}
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (f *Formatter) formatTime(t time.Time) string {
	if f != nil && f.FormatTime != nil {
		return f.FormatTime(t)
	}
	return "'" + t.Format("2006-01-02 15:04:05") + "'"
}

// Literal renders a value into SQL literal text. Strings are quoted and
// escaped, nil and empty sequences render as NULL, non-empty sequences
// render as comma-joined element literals (IN lists), and identifier
// expressions render through the identifier lexer.
func (f *Formatter) Literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case Raw:
		return string(x)
	case Ident:
		return lexIdent(string(x))
	case string:
		return f.quoteString(x)
	case bool:
		return f.formatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return f.formatTime(x)
	case uuid.UUID:
		return f.quoteString(x.String())
	case []byte:
		return f.quoteString(string(x))
	case []any:
		return f.literalList(x)
	default:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			elems := make([]any, rv.Len())
			for i := range elems {
				elems[i] = rv.Index(i).Interface()
			}
			return f.literalList(elems)
		}
		return fmt.Sprint(v)
	}
}

func (f *Formatter) literalList(vs []any) string {
	if len(vs) == 0 {
		return "NULL"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = f.Literal(v)
	}
	return strings.Join(parts, ", ")
}

// isSequence reports whether the value is a slice or array, excluding
// []byte which renders as a string literal.
func isSequence(v any) bool {
	switch v.(type) {
	case []byte, Raw, Ident, nil:
		return false
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}
