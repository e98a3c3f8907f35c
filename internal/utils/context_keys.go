package utils

type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return k.name
}

var (
	ClaimsKey  = &contextKey{"claims"}
	TraceIdKey = &contextKey{"traceId"}
	UserIdKey  = &contextKey{"userId"}
)
