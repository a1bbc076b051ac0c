package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldProfile    = "profile"
	FieldYear       = "year"
	FieldMonth      = "month"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentAPI     = "ledgerapi"
	ComponentSession = "session"
	ComponentStorage = "storage"
	ComponentCache   = "cache"
	ComponentCLI     = "cli"
)
