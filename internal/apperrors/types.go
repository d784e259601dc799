package apperrors

// ValidationError represents a validation error with a field and message
type ValidationError struct {
	Field   string
	Message string
}

// MigrationError is the single fatal error kind raised by the legacy
// migration orchestrator. Every failure inside a run is wrapped into one of
// these before it propagates to the caller.
type MigrationError struct {
	Message string
	Cause   error
}

// StorageError represents an error during object storage operations
type StorageError struct {
	Message string
	Cause   error
}
