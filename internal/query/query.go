// Package query compiles caller-supplied filter, search, sort and pagination
// input into parameterized SQL fragments over the jsonb value column. Only a
// closed set of comparison operators is accepted; raw query fragments from the
// caller are never forwarded to the database.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Default page sizes per listing surface.
const (
	DefaultRecordLimit   = 20
	DefaultActivityLimit = 25
)

// Supported comparison operators of a filter-condition object.
const (
	OpEq  = "eq"
	OpNe  = "ne"
	OpGt  = "gt"
	OpGte = "gte"
	OpLt  = "lt"
	OpLte = "lte"
	OpIn  = "in"
	OpNin = "nin"
)

var comparators = map[string]string{
	OpEq:  "=",
	OpNe:  "<>",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// Condition is one parameterized predicate ready to be passed to the
// backing store. Args always travel as bind parameters.
type Condition struct {
	Clause string
	Args   []interface{}
}

// Sort is a normalized single-field ordering.
type Sort struct {
	Field string
	Desc  bool
}

// RecordQuery is the fully compiled stage pipeline for a record listing.
// The tenant/database scope is mandatory and applied first by the repository;
// everything else is optional.
type RecordQuery struct {
	TenantID   uint
	DatabaseID uint
	Search     *Condition
	Conditions []Condition
	Sort       *Sort
	Offset     int
	Limit      int
}

// CompileFilter translates a caller filter mapping into predicates on the
// value column. Each entry is either a literal or an object keyed by
// comparison operators; entries are conjoined by the repository. Unknown
// operators fail before anything reaches the database.
func CompileFilter(filter map[string]interface{}) ([]Condition, error) {
	conds := make([]Condition, 0, len(filter))
	for field, raw := range filter {
		if field == "" {
			return nil, fmt.Errorf("filter field name must not be empty")
		}
		ops, ok := raw.(map[string]interface{})
		if !ok {
			cond, err := literalCondition(field, raw)
			if err != nil {
				return nil, err
			}
			conds = append(conds, cond)
			continue
		}
		for op, operand := range ops {
			cond, err := operatorCondition(field, op, operand)
			if err != nil {
				return nil, err
			}
			conds = append(conds, cond)
		}
	}
	return conds, nil
}

func literalCondition(field string, value interface{}) (Condition, error) {
	switch v := value.(type) {
	case nil:
		return Condition{Clause: "values ->> ? IS NULL", Args: []interface{}{field}}, nil
	case float64:
		return Condition{Clause: "(values ->> ?)::numeric = ?", Args: []interface{}{field, v}}, nil
	case bool, string:
		return Condition{Clause: "values ->> ? = ?", Args: []interface{}{field, operandText(v)}}, nil
	default:
		return Condition{}, fmt.Errorf("field %q: unsupported literal type %T", field, value)
	}
}

func operatorCondition(field, op string, operand interface{}) (Condition, error) {
	if cmp, ok := comparators[op]; ok {
		switch v := operand.(type) {
		case float64:
			return Condition{
				Clause: fmt.Sprintf("(values ->> ?)::numeric %s ?", cmp),
				Args:   []interface{}{field, v},
			}, nil
		case bool, string:
			return Condition{
				Clause: fmt.Sprintf("values ->> ? %s ?", cmp),
				Args:   []interface{}{field, operandText(v)},
			}, nil
		case nil:
			if op == OpEq {
				return Condition{Clause: "values ->> ? IS NULL", Args: []interface{}{field}}, nil
			}
			if op == OpNe {
				return Condition{Clause: "values ->> ? IS NOT NULL", Args: []interface{}{field}}, nil
			}
			return Condition{}, fmt.Errorf("field %q: operator %q does not accept null", field, op)
		default:
			return Condition{}, fmt.Errorf("field %q: unsupported operand type %T for %q", field, operand, op)
		}
	}

	if op == OpIn || op == OpNin {
		return inCondition(field, op, operand)
	}

	return Condition{}, fmt.Errorf("unknown filter operator %q", op)
}

// inCondition builds set membership. Numeric elements compare under the same
// ::numeric cast the comparators use; rendering them as text would disagree
// with how `->>` prints large or tiny magnitudes. String and bool elements
// compare as text. A mixed list produces both memberships.
func inCondition(field, op string, operand interface{}) (Condition, error) {
	items, ok := operand.([]interface{})
	if !ok || len(items) == 0 {
		return Condition{}, fmt.Errorf("field %q: operator %q requires a non-empty list", field, op)
	}

	var nums, texts []interface{}
	for _, item := range items {
		switch v := item.(type) {
		case float64:
			nums = append(nums, v)
		case string, bool:
			texts = append(texts, operandText(v))
		default:
			return Condition{}, fmt.Errorf("field %q: unsupported list element type %T", field, item)
		}
	}

	keyword, joiner := "IN", " OR "
	if op == OpNin {
		keyword, joiner = "NOT IN", " AND "
	}

	var parts []string
	var args []interface{}
	if len(nums) > 0 {
		parts = append(parts, fmt.Sprintf("(values ->> ?)::numeric %s (%s)", keyword, placeholders(len(nums))))
		args = append(append(args, field), nums...)
	}
	if len(texts) > 0 {
		parts = append(parts, fmt.Sprintf("values ->> ? %s (%s)", keyword, placeholders(len(texts))))
		args = append(append(args, field), texts...)
	}

	clause := strings.Join(parts, joiner)
	if len(parts) > 1 {
		clause = "(" + clause + ")"
	}
	return Condition{Clause: clause, Args: args}, nil
}

func placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = "?"
	}
	return strings.Join(marks, ",")
}

// operandText renders a string or bool operand the way `->>` renders the
// stored value. Numbers never pass through here; they bind under ::numeric.
func operandText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// CompileSearch builds a case-insensitive substring match across the given
// text fields, OR-combined. Returns nil when there is nothing to search.
func CompileSearch(term string, textFields []string) *Condition {
	if term == "" || len(textFields) == 0 {
		return nil
	}
	pattern := "%" + escapeLike(term) + "%"
	clauses := make([]string, len(textFields))
	args := make([]interface{}, 0, len(textFields)*2)
	for i, f := range textFields {
		clauses[i] = "values ->> ? ILIKE ?"
		args = append(args, f, pattern)
	}
	return &Condition{
		Clause: "(" + strings.Join(clauses, " OR ") + ")",
		Args:   args,
	}
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// ParseSort normalizes a sort field and direction. Direction is matched
// case-insensitively; anything that is not "desc" sorts ascending.
func ParseSort(field, order string) *Sort {
	if field == "" {
		return nil
	}
	return &Sort{Field: field, Desc: strings.EqualFold(order, "desc")}
}

// Paginate normalizes page/limit and returns the skip-then-limit window.
// Non-positive pages collapse to 1, non-positive limits to defaultLimit.
func Paginate(page, limit, defaultLimit int) (offset int, normalized int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return (page - 1) * limit, limit
}
