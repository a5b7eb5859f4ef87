package smclient

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"not logged in", ErrNotLoggedIn, "smclient: not logged in"},
		{"mismatch", ErrPasswordMismatch, "smclient: passwords don't match"},
		{"no body", &Error{Kind: KindService, Status: 503}, "smclient: http error 503"},
		{"no code", &Error{Kind: KindService, Status: 200, Description: "boom"}, "smclient: boom (http 200)"},
		{
			"with description",
			&Error{Kind: KindService, Status: 200, Code: Unauthorized, HasCode: true, Description: "bad session"},
			"smclient: bad session (code 1, http 200)",
		},
		{
			"without description",
			&Error{Kind: KindService, Status: 500, Code: 9, HasCode: true},
			"smclient: service error (code 9, http 500)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	svc := newServiceError(500, &Response{Code: 4, Description: "x", hasCode: true}, nil)
	wrapped := fmt.Errorf("listing jobs: %w", svc)

	if !errors.Is(wrapped, ErrService) {
		t.Error("wrapped service error should match ErrService")
	}
	if errors.Is(wrapped, ErrNotLoggedIn) {
		t.Error("service error should not match ErrNotLoggedIn")
	}
	if errors.Is(ErrPasswordMismatch, ErrNotLoggedIn) {
		t.Error("kinds should not match each other")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := newServiceError(502, nil, cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestIsUnauthorized(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("x"), false},
		{"not logged in", ErrNotLoggedIn, false},
		{"unauthorized", newServiceError(200, &Response{Code: Unauthorized, hasCode: true}, nil), true},
		{"other code", newServiceError(200, &Response{Code: 5, hasCode: true}, nil), false},
		{"no body", newServiceError(401, nil, nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnauthorized(tt.err); got != tt.want {
				t.Errorf("IsUnauthorized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResultCode_String(t *testing.T) {
	if Success.String() != "success" || Unauthorized.String() != "unauthorized" {
		t.Errorf("names = %q, %q", Success.String(), Unauthorized.String())
	}
	if ResultCode(17).String() != "17" {
		t.Errorf("String() = %q, want 17", ResultCode(17).String())
	}
}

func TestResponse_Decode(t *testing.T) {
	r := &Response{Data: []byte(`{"id":3}`)}
	var v struct {
		ID int `json:"id"`
	}
	if err := r.Decode(&v); err != nil || v.ID != 3 {
		t.Errorf("Decode = %v, id %d", err, v.ID)
	}

	for _, empty := range []*Response{nil, {}, {Data: []byte("null")}} {
		if err := empty.Decode(&v); !errors.Is(err, ErrNoData) {
			t.Errorf("Decode(%v) err = %v, want ErrNoData", empty, err)
		}
	}
}
