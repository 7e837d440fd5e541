package logs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"easyorders/entity"
	"easyorders/internal/lib/api/response"
)

type fakeCore struct {
	page int
	err  error
}

func (f *fakeCore) GetLogs(_ context.Context, _ *entity.UserAuth, page int) (*entity.LogPage, error) {
	f.page = page
	if f.err != nil {
		return nil, f.err
	}
	return &entity.LogPage{Entries: []*entity.LogEntry{}, Page: page, PerPage: 20, Total: 41, TotalPages: 3}, nil
}

func TestList(t *testing.T) {
	core := &fakeCore{}
	rec := httptest.NewRecorder()
	List(slog.New(slog.NewTextHandler(io.Discard, nil)), core).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?paged=abc", nil))

	if rec.Code != http.StatusOK || core.page != 1 {
		t.Fatalf("status = %d, page = %d", rec.Code, core.page)
	}
	var resp response.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Pagination.TotalPages != 3 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
}

func TestListError(t *testing.T) {
	rec := httptest.NewRecorder()
	List(slog.New(slog.NewTextHandler(io.Discard, nil)), &fakeCore{err: errors.New("db down")}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}
