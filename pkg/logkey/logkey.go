package logkey

// Shared slog attribute keys so log lines stay grep-able across packages.
const (
	TraceID = "trace_id"
	ERROR   = "error"
	OrderID = "order_id"
	StoreID = "store_id"
	UserID  = "user_id"
)
