package response

import (
	"errors"

	"easyorders/internal/lib/clock"
	apierrors "easyorders/internal/lib/errors"
)

type Response struct {
	Data          interface{}  `json:"data,omitempty"`
	Success       bool         `json:"success" validate:"required"`
	StatusMessage string       `json:"status_message"`
	Timestamp     string       `json:"timestamp"`
	Pagination    *Pagination  `json:"pagination,omitempty"`
	Error         *ErrorDetail `json:"error,omitempty"`
	RequestID     string       `json:"request_id,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Count      int `json:"count"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ErrorDetail provides structured error information in responses
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func Ok(data interface{}) Response {
	return OkWithMessage(data, "Success")
}

func OkWithMessage(data interface{}, message string) Response {
	return Response{
		Data:          data,
		Success:       true,
		StatusMessage: message,
		Timestamp:     clock.Now(),
	}
}

// TotalPages is the ceiling of total/count, zero when count is not positive.
func TotalPages(total, count int) int {
	if count <= 0 {
		return 0
	}
	return (total + count - 1) / count
}

func OkWithPagination(data interface{}, page, count, total int) Response {
	resp := Ok(data)
	resp.Pagination = &Pagination{
		Page:       page,
		Count:      count,
		Total:      total,
		TotalPages: TotalPages(total, count),
	}
	return resp
}

// ErrorWithCode creates an error response with a code and message
func ErrorWithCode(code, message string) Response {
	return Response{
		Success:       false,
		StatusMessage: message,
		Timestamp:     clock.Now(),
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// ErrorFromAPIError creates a response from an APIError
func ErrorFromAPIError(err *apierrors.APIError) Response {
	resp := ErrorWithCode(string(err.Code), err.Message)
	resp.Error.Details = err.Details
	return resp
}

// WithRequestID adds a request ID to the response
func (r Response) WithRequestID(requestID string) Response {
	r.RequestID = requestID
	return r
}

// FromError maps err to a status code and an error envelope. Errors that
// are not an *APIError are reported as a generic internal error.
func FromError(err error) (int, Response) {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apierrors.NewInternalError("")
	}
	return apiErr.HTTPStatus, ErrorFromAPIError(apiErr)
}
