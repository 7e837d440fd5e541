package validate

import (
	"strings"
	"testing"
)

type statusForm struct {
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
	Status  string `json:"status" validate:"required,max=32"`
	Nonce   string `json:"nonce" validate:"required"`
	Note    string `json:"note,omitempty"`
}

type loginForm struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required"`
}

func TestStruct_ValidStatusForm(t *testing.T) {
	f := &statusForm{OrderID: 42, Status: "completed", Nonce: "abc"}
	if err := Struct(f); err != nil {
		t.Errorf("Struct() returned error for valid input: %v", err)
	}
}

func TestStruct_FieldRules(t *testing.T) {
	tests := []struct {
		name      string
		form      statusForm
		wantField string
	}{
		{"missing order id", statusForm{Status: "completed", Nonce: "n"}, "order_id"},
		{"negative order id", statusForm{OrderID: -3, Status: "completed", Nonce: "n"}, "order_id"},
		{"missing status", statusForm{OrderID: 1, Nonce: "n"}, "status"},
		{"status too long", statusForm{OrderID: 1, Status: strings.Repeat("x", 33), Nonce: "n"}, "status"},
		{"missing nonce", statusForm{OrderID: 1, Status: "on-hold"}, "nonce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.form)
			if err == nil {
				t.Fatal("Struct() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error should mention %q, got: %v", tt.wantField, err)
			}
		})
	}
}

func TestStruct_MultipleErrorsJoined(t *testing.T) {
	err := Struct(&loginForm{})
	if err == nil {
		t.Fatal("Struct() expected error")
	}
	if !strings.Contains(err.Error(), ";") {
		t.Errorf("multiple errors should be separated by ';', got: %v", err)
	}
}

func TestStruct_NilAndNonStruct(t *testing.T) {
	if err := Struct(nil); err == nil || !strings.Contains(err.Error(), "nil") {
		t.Errorf("Struct(nil) error = %v, want mention of nil", err)
	}

	inputs := []interface{}{"text", 7, []string{"a"}, map[string]bool{"a": true}}
	for _, in := range inputs {
		err := Struct(in)
		if err == nil || !strings.Contains(err.Error(), "not a struct") {
			t.Errorf("Struct(%T) error = %v, want 'not a struct'", in, err)
		}
	}
}

func TestStruct_ValueAndPointer(t *testing.T) {
	f := loginForm{Username: "manager", Password: "secret"}
	if err := Struct(f); err != nil {
		t.Errorf("Struct(value) error = %v", err)
	}
	if err := Struct(&f); err != nil {
		t.Errorf("Struct(pointer) error = %v", err)
	}
}

func TestIsStruct(t *testing.T) {
	var nilForm *loginForm
	tests := []struct {
		name  string
		input interface{}
		want  bool
	}{
		{"struct value", loginForm{}, true},
		{"struct pointer", &loginForm{}, true},
		{"nil pointer", nilForm, false},
		{"string", "hello", false},
		{"slice", []int{1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isStruct(tt.input); got != tt.want {
				t.Errorf("isStruct() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStruct_JsonTagNames(t *testing.T) {
	err := Struct(&statusForm{OrderID: 1, Nonce: "n"})
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "Status:") {
		t.Errorf("error should use json name, got: %v", err)
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	if getValidator() != getValidator() {
		t.Error("getValidator() should return the same instance")
	}
}
