package config

// Service defines configuration loading operations
type Service interface {
	Load(path string) (*Config, error)
}

// Logger interface for logging operations
type Logger interface {
	LogInfo(msg string, fields map[string]interface{})
}
