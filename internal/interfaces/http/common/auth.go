package common

import "context"

type contextKey string

const operatorContextKey contextKey = "operator"

// Operator is the JWT-derived principal allowed on admin routes.
type Operator struct {
	Subject string `json:"subject"`
	Name    string `json:"name,omitempty"`
}

// ContextWithOperator stores the authenticated operator into context.
func ContextWithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey, op)
}

// OperatorFromContext extracts the authenticated operator from context.
func OperatorFromContext(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(operatorContextKey).(Operator)
	return op, ok
}
