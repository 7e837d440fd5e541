package response

import (
	"errors"
	"fmt"
	"testing"

	apierrors "easyorders/internal/lib/errors"
)

func TestOk(t *testing.T) {
	resp := Ok(map[string]string{"key": "value"})

	if !resp.Success {
		t.Error("Ok() Success should be true")
	}
	if resp.StatusMessage != "Success" {
		t.Errorf("Ok() StatusMessage = %v, want Success", resp.StatusMessage)
	}
	if resp.Data == nil {
		t.Error("Ok() Data should not be nil")
	}
	if resp.Timestamp == "" {
		t.Error("Ok() Timestamp should not be empty")
	}
	if resp.Pagination != nil {
		t.Error("Ok() Pagination should be nil")
	}
}

func TestOkWithPagination(t *testing.T) {
	resp := OkWithPagination([]string{"a", "b"}, 2, 20, 41)

	if resp.Pagination == nil {
		t.Fatal("OkWithPagination() Pagination should not be nil")
	}
	if resp.Pagination.Page != 2 || resp.Pagination.Count != 20 || resp.Pagination.Total != 41 {
		t.Errorf("Pagination = %+v", resp.Pagination)
	}
	if resp.Pagination.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", resp.Pagination.TotalPages)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name  string
		count int
		total int
		want  int
	}{
		{"100 items, 10 per page", 10, 100, 10},
		{"95 items, 10 per page", 10, 95, 10},
		{"90 items, 10 per page", 10, 90, 9},
		{"1 item, 20 per page", 20, 1, 1},
		{"0 items", 20, 0, 0},
		{"zero count", 0, 100, 0},
		{"negative count", -1, 100, 0},
		{"101 items, 100 per page", 100, 101, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalPages(tt.total, tt.count); got != tt.want {
				t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.count, got, tt.want)
			}
		})
	}
}

func TestErrorFromAPIError(t *testing.T) {
	resp := ErrorFromAPIError(apierrors.NewRateLimitError(15))

	if resp.Success {
		t.Error("Success should be false")
	}
	if resp.Error == nil {
		t.Fatal("Error detail should be set")
	}
	if resp.Error.Code != string(apierrors.ErrCodeRateLimitExceed) {
		t.Errorf("Code = %q", resp.Error.Code)
	}
	if resp.Error.Details["wait_seconds"] != "15" {
		t.Errorf("Details = %v", resp.Error.Details)
	}
	if resp.StatusMessage != resp.Error.Message {
		t.Errorf("StatusMessage %q differs from error message %q", resp.StatusMessage, resp.Error.Message)
	}
}

func TestWithRequestID(t *testing.T) {
	resp := ErrorWithCode("NOT_FOUND", "Requested resource not found").WithRequestID("req-1")
	if resp.RequestID != "req-1" {
		t.Errorf("RequestID = %q", resp.RequestID)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"api error", apierrors.NewRateLimitError(12), 429, "RATE_LIMIT_EXCEEDED"},
		{"wrapped api error", fmt.Errorf("outer: %w", apierrors.NewNotFoundError("order")), 404, "NOT_FOUND"},
		{"plain error", errors.New("boom"), 500, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromError(tt.err)
			if status != tt.status || resp.Error.Code != tt.code || resp.Success {
				t.Errorf("FromError() = %d %+v", status, resp.Error)
			}
		})
	}
}
