package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Request is the envelope of mutating admin actions: the payload plus the
// anti-forgery token issued with the page it was submitted from.
type Request struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Nonce string          `json:"nonce"`
}

var (
	ErrEmptyBody = errors.New("request body is empty")
	ErrNoData    = errors.New("data field is empty")
)

// Binder is an interface for entities that can validate themselves
type Binder interface {
	Bind(*http.Request) error
}

// Decode decodes request body into Request struct
func Decode(r *http.Request) (*Request, error) {
	var req Request
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyBody
		}
		return nil, err
	}
	return &req, nil
}

// UnmarshalData unmarshals the Data field into a typed value
func (r *Request) UnmarshalData(target interface{}) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return ErrNoData
	}
	return json.Unmarshal(r.Data, target)
}

// DecodeData unmarshals the payload into target and runs its Bind validation
// when the type provides one.
// Usage: var update entity.StatusUpdate; err := DecodeData(req, r, &update)
func DecodeData[T any](req *Request, httpReq *http.Request, target *T) error {
	if err := req.UnmarshalData(target); err != nil {
		return err
	}
	if binder, ok := any(target).(Binder); ok {
		if err := binder.Bind(httpReq); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}
