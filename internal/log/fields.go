package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldUserID     = "user_id"
	FieldTable      = "table"
	FieldChangeType = "change_type"
	FieldRecordID   = "record_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldCurrency   = "currency"
	FieldAmount     = "amount"
	FieldCategory   = "category"
	FieldNextDate   = "next_payment_date"
)

// Standard component names.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentStore    = "store"
	ComponentRealtime = "realtime"
	ComponentWorker   = "worker"
	ComponentRates    = "rates"
	ComponentSettings = "settings"
)
