package dto

import "net/http"

// Response 统一的成功响应外壳，success = statusCode < 400
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorResponse 统一的错误响应外壳
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func NewResponse(status int, data interface{}, message string) Response {
	return Response{StatusCode: status, Data: data, Message: message, Success: status < http.StatusBadRequest}
}

func NewErrorResponse(status int, message string, errs ...string) ErrorResponse {
	if errs == nil {
		errs = []string{}
	}
	return ErrorResponse{StatusCode: status, Message: message, Success: false, Errors: errs}
}
