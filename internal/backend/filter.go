package backend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FilterOp is one of the structured filter operators.
type FilterOp string

const (
	OpEq     FilterOp = "$eq"
	OpNe     FilterOp = "$ne"
	OpGt     FilterOp = "$gt"
	OpGte    FilterOp = "$gte"
	OpLt     FilterOp = "$lt"
	OpLte    FilterOp = "$lte"
	OpIn     FilterOp = "$in"
	OpExists FilterOp = "$exists"
)

var comparisonSymbol = map[FilterOp]string{
	OpEq:  "=",
	OpNe:  "!=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// SerializeFilter turns the structured filter mapping into an
// AND-joined boolean expression string. Each value is either a scalar
// (expanded to an equality), a list (expanded to OR-of-equals), or an
// operator object keyed by one of FilterOp.
//
// Field iteration order is sorted for determinism (the mapping is a Go map
// with no inherent order); this does not change the filter's meaning since
// every clause is AND-joined.
func SerializeFilter(filter map[string]any) (string, error) {
	if len(filter) == 0 {
		return "", nil
	}

	fields := make([]string, 0, len(filter))
	for field := range filter {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	clauses := make([]string, 0, len(fields))
	for _, field := range fields {
		clause, err := serializeField(field, filter[field])
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}

	return strings.Join(clauses, " AND "), nil
}

func serializeField(field string, value any) (string, error) {
	switch v := value.(type) {
	case map[string]any:
		return serializeOperatorObject(field, v)
	case []any:
		return serializeInList(field, v), nil
	default:
		return fmt.Sprintf("%s = %s", field, literal(value)), nil
	}
}

func serializeOperatorObject(field string, ops map[string]any) (string, error) {
	var clauses []string

	// Deterministic order over the fixed operator set.
	order := []FilterOp{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpExists}
	for _, op := range order {
		raw, ok := ops[string(op)]
		if !ok {
			continue
		}

		switch op {
		case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte:
			clauses = append(clauses, fmt.Sprintf("%s %s %s", field, comparisonSymbol[op], literal(raw)))
		case OpIn:
			list, ok := raw.([]any)
			if !ok {
				return "", fmt.Errorf("backend: %s $in requires a list", field)
			}
			clauses = append(clauses, serializeInList(field, list))
		case OpExists:
			exists, _ := raw.(bool)
			if exists {
				clauses = append(clauses, fmt.Sprintf("%s EXISTS", field))
			} else {
				clauses = append(clauses, fmt.Sprintf("%s NOT EXISTS", field))
			}
		}
	}

	if len(clauses) == 0 {
		return "", fmt.Errorf("backend: %s has no recognized filter operator", field)
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return "(" + strings.Join(clauses, " AND ") + ")", nil
}

func serializeInList(field string, list []any) string {
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = fmt.Sprintf("%s = %s", field, literal(v))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// literal renders a filter value as a backend literal: strings are
// double-quoted with embedded quotes backslash-escaped, booleans
// lower-cased, nil becomes "null", numbers pass through bare.
func literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case string:
		escaped := strings.ReplaceAll(val, `"`, `\"`)
		return `"` + escaped + `"`
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}
