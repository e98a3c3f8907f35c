package querybuilder

import (
	"fmt"
	"sort"
	"strings"
)

// comparisonOperator enumerates the comparisons a condition key may request
// via its "$" suffix. Unknown suffixes fall back to equality.
type comparisonOperator int

const (
	opEquals comparisonOperator = iota
	opLessThan
	opGreaterThan
	opLessThanOrEqual
	opGreaterThanOrEqual
	opIsNull
	opNotNull
)

// condition is a single parsed WHERE clause entry. Column holds the
// snake_case column name, already checked against the allow-list.
type condition struct {
	Column   string
	Operator comparisonOperator
	Value    any
}

// parseConditionKey splits a condition key of the form "field" or
// "field$op" into the base field and its comparison operator. The allow-list
// check always applies to the base field, never the suffixed key.
func parseConditionKey(key string) (string, comparisonOperator) {
	field, suffix, found := strings.Cut(key, "$")
	if !found {
		return field, opEquals
	}
	switch suffix {
	case "lt":
		return field, opLessThan
	case "gt":
		return field, opGreaterThan
	case "lte":
		return field, opLessThanOrEqual
	case "gte":
		return field, opGreaterThanOrEqual
	case "is_null", "isNull":
		return field, opIsNull
	case "not_null", "notNull":
		return field, opNotNull
	default:
		return field, opEquals
	}
}

// filterConditions translates the caller-supplied condition map into parsed
// conditions, dropping every entry whose base field is not allow-listed.
// When operators is false the keys are taken verbatim and compared with
// equality only. The result is sorted by column for deterministic SQL.
func filterConditions(conditions map[string]any, allowed []string, operators bool) []condition {
	parsed := make([]condition, 0, len(conditions))
	for key, value := range keysToSnake(conditions) {
		field := key
		operator := opEquals
		if operators {
			field, operator = parseConditionKey(key)
		}
		if !contains(allowed, field) {
			continue
		}
		parsed = append(parsed, condition{Column: field, Operator: operator, Value: value})
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Column < parsed[j].Column })
	return parsed
}

// whereClause renders the conditions as an AND-combined WHERE body with
// numbered placeholders starting at firstParam. Null checks bind no value.
func whereClause(conditions []condition, firstParam int) (string, []any) {
	clauses := make([]string, 0, len(conditions))
	values := make([]any, 0, len(conditions))
	param := firstParam
	for _, cond := range conditions {
		switch cond.Operator {
		case opIsNull:
			clauses = append(clauses, cond.Column+" IS NULL")
		case opNotNull:
			clauses = append(clauses, cond.Column+" IS NOT NULL")
		default:
			clauses = append(clauses, fmt.Sprintf("%s %s $%d", cond.Column, cond.Operator.symbol(), param))
			values = append(values, cond.Value)
			param++
		}
	}
	return strings.Join(clauses, " AND "), values
}

func (op comparisonOperator) symbol() string {
	switch op {
	case opLessThan:
		return "<"
	case opGreaterThan:
		return ">"
	case opLessThanOrEqual:
		return "<="
	case opGreaterThanOrEqual:
		return ">="
	default:
		return "="
	}
}

func contains(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}
