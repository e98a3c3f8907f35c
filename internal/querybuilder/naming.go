package querybuilder

import "strings"

// ToSnake converts a camelCase field name to the snake_case column naming
// used by the database. The conversion is lossless with respect to ToCamel:
// ToCamel(ToSnake(key)) == key for every camelCase key.
func ToSnake(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamel converts a snake_case column name back to the camelCase naming
// exposed to callers.
func ToCamel(column string) string {
	var b strings.Builder
	b.Grow(len(column))
	upperNext := false
	for _, r := range column {
		if r == '_' {
			upperNext = true
			continue
		}
		if upperNext && r >= 'a' && r <= 'z' {
			b.WriteRune(r - ('a' - 'A'))
			upperNext = false
			continue
		}
		upperNext = false
		b.WriteRune(r)
	}
	return b.String()
}

// keysToSnake returns a copy of the map with every key converted to its
// column name.
func keysToSnake(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[ToSnake(key)] = value
	}
	return out
}

// keysToCamel returns a copy of the map with every column name converted
// back to its caller-facing key.
func keysToCamel(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for column, value := range row {
		out[ToCamel(column)] = value
	}
	return out
}
