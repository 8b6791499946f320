package logger

// Service exposes logging to the frontend
type Service struct {
	debugMode bool
}

// NewService creates a new logging service
func NewService(debugMode bool) *Service {
	return &Service{debugMode: debugMode}
}

// LogMessage logs a message coming from the UI layer
func (s *Service) LogMessage(level, message, component string) {
	switch level {
	case "error":
		WriteError(component, message)
	case "warning":
		WriteWarning(component, message)
	case "debug":
		if s.debugMode {
			WriteDebug(component, message)
		}
	default:
		WriteInfo(component, message)
	}
}

// SetDebugMode enables or disables debug logging
func (s *Service) SetDebugMode(enabled bool) {
	s.debugMode = enabled
	SetDebug(enabled)
}

// GetDebugMode returns the current debug mode status
func (s *Service) GetDebugMode() bool {
	return s.debugMode
}

// GetLogFilePath returns the current log file path
func (s *Service) GetLogFilePath() string {
	return GetLogPath()
}
