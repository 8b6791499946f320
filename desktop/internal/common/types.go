package common

// StandardResponse is the common response format for API calls
type StandardResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Date layouts used across the app. Dates are stored as ISO text.
const (
	DateFormat        = "2006-01-02"
	DisplayDateFormat = "02/01/2006"
)

// ErrorResponse creates a standard error response
func ErrorResponse(err error) StandardResponse {
	return StandardResponse{
		Success: false,
		Error:   err.Error(),
	}
}

// SuccessResponse creates a standard success response
func SuccessResponse(data interface{}) StandardResponse {
	return StandardResponse{
		Success: true,
		Data:    data,
	}
}

// MessageResponse creates a response with a message
func MessageResponse(success bool, message string) StandardResponse {
	return StandardResponse{
		Success: success,
		Message: message,
	}
}
