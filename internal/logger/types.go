package logger

// LogLevel represents the logging level
type LogLevel string

// Supported log levels
const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Config holds logger configuration
type Config struct {
	Level       LogLevel `mapstructure:"level"`
	Format      string   `mapstructure:"format"`
	Output      string   `mapstructure:"output"`
	Development bool     `mapstructure:"development"`

	File struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"file"`
}
