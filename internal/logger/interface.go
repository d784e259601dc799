package logger

// Logger defines the logging operations used across the application
type Logger interface {
	LogInfo(msg string, fields map[string]interface{})
	LogError(err error, msg string) error
	LogErrorf(err error, format string, args ...interface{}) error
	LogFatal(err error, context string)
	LogDebug(message string, fields map[string]interface{})
	LogWarn(message string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
	WithUserID(userID string) Logger
}
