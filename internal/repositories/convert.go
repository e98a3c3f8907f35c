package repositories

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// The query builder hands rows back as generic maps; the helpers below
// normalize the driver's concrete value types into the model's types.

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

func asStringPtr(value any) *string {
	if value == nil {
		return nil
	}
	s := asString(value)
	return &s
}

func asUUID(value any) uuid.UUID {
	switch v := value.(type) {
	case uuid.UUID:
		return v
	case [16]byte:
		return uuid.UUID(v)
	case string:
		id, err := uuid.Parse(v)
		if err == nil {
			return id
		}
	case []byte:
		id, err := uuid.ParseBytes(v)
		if err == nil {
			return id
		}
	}
	return uuid.Nil
}

func asBool(value any) bool {
	b, ok := value.(bool)
	return ok && b
}

func asTime(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case pgtype.Timestamptz:
		if v.Valid {
			return v.Time
		}
	case pgtype.Timestamp:
		if v.Valid {
			return v.Time
		}
	}
	return time.Time{}
}

func asTimePtr(value any) *time.Time {
	if value == nil {
		return nil
	}
	t := asTime(value)
	if t.IsZero() {
		return nil
	}
	return &t
}
