package apperrors

// Error message constants
const (
	ErrMsgMigrationDisabled = "Legacy migration is disabled"
	ErrMsgMigrationRunning  = "A legacy migration is already running for this user"
	ErrMsgProfileNotFound   = "User profile not found"
	ErrMsgCorruptPayload    = "Failed to decode legacy asset payload"
)
