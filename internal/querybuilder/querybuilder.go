// Package querybuilder constructs parameterized SQL statements from
// declarative per-operation allow-lists. It is the only path the rest of the
// application uses to reach storage: callers hand over field maps keyed by
// their public camelCase names and the builder decides which of those keys
// are permitted, translating between the public naming and the column naming
// on the way in and out. Caller input never reaches the SQL text itself,
// only the bound parameters.
package querybuilder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"server-identity/internal/interfaces"
)

// Operation names used in DatabaseError reporting.
const (
	OperationCreate     = "create"
	OperationGet        = "get"
	OperationUpdate     = "update"
	OperationDelete     = "delete"
	OperationDeleteBulk = "delete_bulk"
)

// CreateSpec configures an insert operation. Columns is the closed set of
// insertable columns; NewID, when set, supplies the generated primary key.
type CreateSpec struct {
	Table     string
	Columns   []string
	Returning []string
	NewID     func() any
}

// GetSpec configures a single-row select. AllowedFields may contain "*" to
// permit every column.
type GetSpec struct {
	Table             string
	AllowedFields     []string
	AllowedConditions []string
}

// UpdateSpec configures an update. AllowedFields is the closed set of
// writable columns; Returning is the restricted projection handed back.
type UpdateSpec struct {
	Table             string
	AllowedFields     []string
	AllowedConditions []string
	Returning         []string
}

// DeleteSpec configures delete and bulk-delete operations.
type DeleteSpec struct {
	Table             string
	AllowedConditions []string
}

// Builder executes allow-listed statements against a connection pool.
// Every call carries its own deadline so no storage operation can hang.
type Builder struct {
	pool    interfaces.PgxPoolIface
	timeout time.Duration
}

// New constructs a Builder. A non-positive timeout falls back to 10 seconds,
// matching the transaction deadline used elsewhere in the server.
func New(pool interfaces.PgxPoolIface, timeout time.Duration) *Builder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Builder{pool: pool, timeout: timeout}
}

// Create inserts a row assembled from the allow-listed subset of data and
// returns the spec's returning projection of the created row.
func (b *Builder) Create(ctx context.Context, spec CreateSpec, data map[string]any) (map[string]any, error) {
	row := keysToSnake(data)

	columns := make([]string, 0, len(row)+1)
	for column := range row {
		if contains(spec.Columns, column) {
			columns = append(columns, column)
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w for table %q", ErrNoValidColumns, spec.Table)
	}
	sort.Strings(columns)

	if spec.NewID != nil {
		row["id"] = spec.NewID()
		columns = append([]string{"id"}, columns...)
	}

	placeholders := make([]string, len(columns))
	values := make([]any, len(columns))
	for i, column := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		values[i] = row[column]
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		spec.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		returningColumns(spec.Returning),
	)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	rows, err := b.pool.Query(ctx, query, values...)
	if err != nil {
		return nil, wrapError(spec.Table, OperationCreate, err)
	}
	created, err := collectFirstRow(rows)
	if err != nil {
		return nil, wrapError(spec.Table, OperationCreate, err)
	}
	return created, nil
}

// Get selects the first row matching the AND-combined equality conditions.
// fields narrows the projection and supports the "*" wildcard; when empty,
// the full allowed set is returned. A missing row is (nil, nil), not an
// error.
func (b *Builder) Get(ctx context.Context, spec GetSpec, conditions map[string]any, fields ...string) (map[string]any, error) {
	wildcard := contains(spec.AllowedFields, "*")

	selected := make([]string, 0, len(fields))
	for _, field := range fields {
		column := ToSnake(field)
		if field == "*" || wildcard || contains(spec.AllowedFields, column) {
			selected = append(selected, column)
		}
	}
	if len(fields) == 0 {
		selected = spec.AllowedFields
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w for table %q", ErrNoValidFields, spec.Table)
	}

	projection := strings.Join(selected, ", ")
	if wildcard || contains(selected, "*") {
		projection = "*"
	}

	parsed := filterConditions(conditions, spec.AllowedConditions, false)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w for table %q", ErrNoValidConditions, spec.Table)
	}
	where, values := whereClause(parsed, 1)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", projection, spec.Table, where)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	rows, err := b.pool.Query(ctx, query, values...)
	if err != nil {
		return nil, wrapError(spec.Table, OperationGet, err)
	}
	row, err := collectFirstRow(rows)
	if err != nil {
		return nil, wrapError(spec.Table, OperationGet, err)
	}
	return row, nil
}

// Update applies the allow-listed subset of data to every row matching the
// conditions and returns the spec's restricted returning projection of the
// first updated row, or (nil, nil) when nothing matched. Condition keys may
// carry operator suffixes, which makes conditional single-use updates
// expressible through the builder.
func (b *Builder) Update(ctx context.Context, spec UpdateSpec, conditions, data map[string]any) (map[string]any, error) {
	row := keysToSnake(data)

	columns := make([]string, 0, len(row))
	for column := range row {
		if contains(spec.AllowedFields, column) {
			columns = append(columns, column)
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w to update in table %q", ErrNoValidFields, spec.Table)
	}
	sort.Strings(columns)

	parsed := filterConditions(conditions, spec.AllowedConditions, true)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w for table %q", ErrNoValidConditions, spec.Table)
	}

	assignments := make([]string, len(columns))
	values := make([]any, 0, len(columns)+len(parsed))
	for i, column := range columns {
		assignments[i] = fmt.Sprintf("%s = $%d", column, i+1)
		values = append(values, row[column])
	}
	where, conditionValues := whereClause(parsed, len(columns)+1)
	values = append(values, conditionValues...)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s RETURNING %s",
		spec.Table,
		strings.Join(assignments, ", "),
		where,
		returningColumns(spec.Returning),
	)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	rows, err := b.pool.Query(ctx, query, values...)
	if err != nil {
		return nil, wrapError(spec.Table, OperationUpdate, err)
	}
	updated, err := collectFirstRow(rows)
	if err != nil {
		return nil, wrapError(spec.Table, OperationUpdate, err)
	}
	return updated, nil
}

// Delete removes every row matching the AND-combined equality conditions
// and returns the affected row count.
func (b *Builder) Delete(ctx context.Context, spec DeleteSpec, conditions map[string]any) (int64, error) {
	parsed := filterConditions(conditions, spec.AllowedConditions, false)
	if len(parsed) == 0 {
		return 0, fmt.Errorf("%w for table %q", ErrNoValidConditions, spec.Table)
	}
	where, values := whereClause(parsed, 1)

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", spec.Table, where)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	tag, err := b.pool.Exec(ctx, query, values...)
	if err != nil {
		return 0, wrapError(spec.Table, OperationDelete, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteBulk removes every row matching the conditions, whose keys may carry
// comparison-operator suffixes ("expiresAt$lt", "usedAt$not_null", ...).
// The allow-list check applies to the base field with the suffix stripped.
func (b *Builder) DeleteBulk(ctx context.Context, spec DeleteSpec, conditions map[string]any) (int64, error) {
	parsed := filterConditions(conditions, spec.AllowedConditions, true)
	if len(parsed) == 0 {
		return 0, fmt.Errorf("%w for table %q", ErrNoValidConditions, spec.Table)
	}
	where, values := whereClause(parsed, 1)

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", spec.Table, where)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	tag, err := b.pool.Exec(ctx, query, values...)
	if err != nil {
		return 0, wrapError(spec.Table, OperationDeleteBulk, err)
	}
	return tag.RowsAffected(), nil
}

// collectFirstRow drains the result set and returns the first row as a map
// keyed by the public camelCase names, or nil when the set is empty.
func collectFirstRow(rows pgx.Rows) (map[string]any, error) {
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	values, err := rows.Values()
	if err != nil {
		return nil, err
	}

	row := make(map[string]any, len(values))
	for i, description := range rows.FieldDescriptions() {
		row[string(description.Name)] = values[i]
	}
	return keysToCamel(row), rows.Err()
}

func returningColumns(returning []string) string {
	if len(returning) == 0 {
		return "*"
	}
	return strings.Join(returning, ", ")
}
