package serverutils

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{Success: true, Code: 0, Message: message, Data: data}
}

// ErrorResponse carries a business error code, not the HTTP status.
func ErrorResponse(code int, message string) Response {
	return Response{Success: false, Code: code, Message: message}
}
