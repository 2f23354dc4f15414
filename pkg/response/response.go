package response

// Response represents a standard API response format
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError carries per-field validation detail
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// OK returns a standard success response wrapping the data
func OK(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// OKWithMessage returns a success response carrying both a message and data
func OKWithMessage(message string, data interface{}) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(message string) Response {
	return Response{
		Success: false,
		Message: message,
	}
}

// ValidationError returns an error response with per-field detail
func ValidationError(message string, errors []FieldError) Response {
	return Response{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}
