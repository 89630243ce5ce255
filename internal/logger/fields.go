package logger

// Standard field names for structured logging across lineage.
const (
	FieldCommand        = "command"
	FieldCategorization = "categorization"
	FieldCategory       = "category"
	FieldKey            = "key"
	FieldPolicy         = "policy"
	FieldSnapshot       = "snapshot"
	FieldPath           = "path"
	FieldCount          = "count"
	FieldError          = "error"
)
