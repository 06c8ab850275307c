package http

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderRequestID     = "X-Request-Id"
	HeaderValueJson     = "application/json"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)
