package quarry

import (
	"fmt"
	"regexp"
	"strings"
)

// Ident is a symbolic column or table reference. It is subject to
// separator rewriting when rendered:
//
//	Ident("items__price")         // items.price
//	Ident("price___total")        // price AS total
//	Ident("items__price___total") // items.price AS total
//
// Plain strings appearing in identifier positions are treated the same
// way; symbolic names that contain no separators pass through unchanged.
type Ident string

// Raw is an SQL fragment rendered verbatim, with no rewriting, quoting
// or escaping. The caller is trusted.
type Raw string

// aliasRe splits an identifier on its triple-underscore alias separator.
// The left side is greedy, so the split lands on the last candidate and
// operates on the original unsplit token.
var aliasRe = regexp.MustCompile(`^(.+)___(.+)$`)

// lexIdent rewrites a symbolic identifier into SQL text. The alias split
// is applied first, on the whole token; qualification rewriting then
// runs over the result.
func lexIdent(s string) string {
	if m := aliasRe.FindStringSubmatch(s); m != nil {
		s = m[1] + " AS " + m[2]
	}
	return strings.ReplaceAll(s, "__", ".")
}

// resolve renders an identifier-position value into SQL text.
func resolve(v any) string {
	switch f := v.(type) {
	case Raw:
		return string(f)
	case Ident:
		return lexIdent(string(f))
	case string:
		return lexIdent(f)
	default:
		return fmt.Sprint(v)
	}
}

// qualify renders an identifier and prefixes it with the default table
// unless it is already qualified.
func qualify(v any, table string) string {
	s := resolve(v)
	if strings.Contains(s, ".") {
		return s
	}
	return table + "." + s
}

// As aliases an expression. The alias is symbolic and resolved the same
// way identifiers are.
func As(expr any, alias string) Raw {
	return Raw(resolve(expr) + " AS " + resolve(alias))
}

// Desc marks an order term as descending. Applying Desc to a term that
// already carries the suffix is not detected here; use reverseOrder
// semantics via Dataset.Last for round-trip behavior.
func Desc(term any) Raw {
	return Raw(resolve(term) + " DESC")
}

// Min returns a MIN aggregate expression over the given field.
func Min(field any) Raw {
	return Raw("min(" + resolve(field) + ")")
}

// Max returns a MAX aggregate expression over the given field.
func Max(field any) Raw {
	return Raw("max(" + resolve(field) + ")")
}

// Sum returns a SUM aggregate expression over the given field.
func Sum(field any) Raw {
	return Raw("sum(" + resolve(field) + ")")
}
