package middlewares

const (
	ctxActorKey   = "auth.actor"
	CtxRequestID  = "request_id"
	requestHeader = "X-Request-Id"
)
