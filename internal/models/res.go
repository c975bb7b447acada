package models

type ApiResponse struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message,omitempty"`
	Error     string   `json:"error,omitempty"`
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

func SuccessResponse(message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Message: message,
	}
}

func ErrorResponse(err string) ApiResponse {
	return ApiResponse{
		Success: false,
		Error:   err,
	}
}

func ValidationErrorResponse(err string, details []string) ApiResponse {
	return ApiResponse{
		Success: false,
		Error:   err,
		Details: details,
	}
}
