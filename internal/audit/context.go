package audit

import "context"

type ctxKey string

const requestInfoKey ctxKey = "audit_request_info"

// RequestInfo is the ambient request context captured on every record.
type RequestInfo struct {
	RequestID string
	IPAddress string
	UserAgent string
}

// WithRequestInfo attaches request-level context for audit logging.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey, info)
}

func requestInfoFromContext(ctx context.Context) RequestInfo {
	if ctx == nil {
		return RequestInfo{}
	}
	if v, ok := ctx.Value(requestInfoKey).(RequestInfo); ok {
		return v
	}
	return RequestInfo{}
}
