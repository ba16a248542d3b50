package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldBillID      = "bill_id"
	FieldSearch      = "search"
	FieldTag         = "tag"
	FieldResultCount = "result_count"
	FieldSource      = "source"
	FieldBatchSize   = "batch_size"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentCatalog   = "catalog"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
	ComponentMCP       = "mcp"
	ComponentAdmin     = "admin"
)

// Operations defines standard operation names
const (
	OpList     = "list"
	OpGet      = "get"
	OpImport   = "import"
	OpExport   = "export"
	OpRecord   = "record"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds request ID field when it is known.
func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithQuery adds the bill listing filter. Absent terms are omitted.
func (f LogFields) WithQuery(search, tag string) LogFields {
	if search != "" {
		f[FieldSearch] = search
	}
	if tag != "" {
		f[FieldTag] = tag
	}
	return f
}

// WithBill adds the bill id field.
func (f LogFields) WithBill(id int) LogFields {
	f[FieldBillID] = id
	return f
}

// WithResultCount adds the number of bills a query returned.
func (f LogFields) WithResultCount(n int) LogFields {
	f[FieldResultCount] = n
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
