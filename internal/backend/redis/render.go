package redis

import (
	"fmt"
	"strings"

	"github.com/kestrel-cloud/vqgate/internal/backend/predicate"
	"github.com/kestrel-cloud/vqgate/internal/domain"
	"github.com/kestrel-cloud/vqgate/internal/domain/search/filter"
)

// renderPredicate translates a compiled predicate into an FT.SEARCH
// pre-filter query string. A nil predicate renders to "" (match all).
// Leaf rendering is driven by the value's runtime kind: strings and
// booleans map to TAG syntax, numbers to NUMERIC ranges. Combinations
// the query dialect cannot express fail as a backend query error.
func renderPredicate(p *predicate.Predicate) (string, error) {
	if p == nil {
		return "", nil
	}
	return renderNode(p)
}

func renderNode(p *predicate.Predicate) (string, error) {
	switch p.Kind() {
	case predicate.KindLeaf:
		return renderLeaf(p)
	case predicate.KindAll:
		return renderChildren(p.Children(), " ")
	case predicate.KindAny:
		return renderChildren(p.Children(), " | ")
	default:
		return "", fmt.Errorf("%w: unknown predicate kind %d", domain.ErrBackendQuery, p.Kind())
	}
}

func renderChildren(children []*predicate.Predicate, sep string) (string, error) {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		rendered, err := renderNode(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func renderLeaf(p *predicate.Predicate) (string, error) {
	field, op, val := p.Field(), p.Op(), p.Value()

	switch op {
	case filter.OpEq:
		return renderEq(field, val), nil

	case filter.OpNeq:
		return "-" + renderEq(field, val), nil

	case filter.OpGt, filter.OpGte, filter.OpLt, filter.OpLte:
		if val.Kind() != filter.KindNumber {
			return "", fmt.Errorf(
				"%w: operator %q on field %q requires a numeric value",
				domain.ErrBackendQuery, op, field)
		}
		return renderRange(field, op, val.Num()), nil

	case filter.OpLike:
		return renderLike(field, val.Str()), nil

	default:
		return "", fmt.Errorf("%w: operator %q is not renderable", domain.ErrBackendQuery, op)
	}
}

func renderEq(field string, val filter.Scalar) string {
	if val.Kind() == filter.KindNumber {
		v := val.Num()
		return fmt.Sprintf("@%s:[%g %g]", field, v, v)
	}
	// Strings and booleans are stored as TAG values.
	return fmt.Sprintf("@%s:{%s}", field, tagEscaper.Replace(val.Render()))
}

func renderRange(field string, op filter.Operator, v float64) string {
	switch op {
	case filter.OpGt:
		return fmt.Sprintf("@%s:[(%g +inf]", field, v)
	case filter.OpGte:
		return fmt.Sprintf("@%s:[%g +inf]", field, v)
	case filter.OpLt:
		return fmt.Sprintf("@%s:[-inf (%g]", field, v)
	default: // OpLte
		return fmt.Sprintf("@%s:[-inf %g]", field, v)
	}
}

// renderLike builds a TAG wildcard match. The pattern's * and ? wildcards
// pass through; everything else is escaped (requires DIALECT 2).
func renderLike(field, pattern string) string {
	return fmt.Sprintf("@%s:{%s}", field, likeEscaper.Replace(pattern))
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

// likeEscaper matches tagEscaper minus * and ?, which stay live wildcards.
var likeEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
