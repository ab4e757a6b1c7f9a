package models

// Response is the envelope for API errors and batch results. Success is 1
// or 0; ErrorCode names the kind of failure.
type Response struct {
	Success      int         `json:"success"`
	ErrorCode    string      `json:"error_code,omitempty"`
	ErrorDetails string      `json:"error_details,omitempty"`
	Data         interface{} `json:"data,omitempty"`
}

func ErrorResponse(code, details string) Response {
	return Response{ErrorCode: code, ErrorDetails: details}
}
