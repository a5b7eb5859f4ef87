package smclient

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Response is the envelope every Service Manager endpoint answers with.
type Response struct {
	Code        ResultCode `json:"code"`
	Description string     `json:"description"`
	// SessionToken is only set by the login endpoint.
	SessionToken string          `json:"session_token,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`

	// hasCode is false when the body carried no code or a null one.
	hasCode bool
}

// UnmarshalJSON records whether the body carried a code.
func (r *Response) UnmarshalJSON(b []byte) error {
	var w struct {
		Code         *ResultCode     `json:"code"`
		Description  string          `json:"description"`
		SessionToken string          `json:"session_token"`
		Data         json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*r = Response{
		Description:  w.Description,
		SessionToken: w.SessionToken,
		Data:         w.Data,
	}
	if w.Code != nil {
		r.Code = *w.Code
		r.hasCode = true
	}
	return nil
}

// HasCode reports whether the response carried an application code.
func (r *Response) HasCode() bool {
	return r != nil && r.hasCode
}

// ErrNoData is returned by Decode when the response carries no data.
var ErrNoData = errors.New("smclient: response has no data")

// Decode unmarshals the data field into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Data) == 0 || string(r.Data) == "null" {
		return ErrNoData
	}
	return json.Unmarshal(r.Data, v)
}

// ok reports whether the call succeeded: HTTP 200 and code Success. A
// missing code is never Success.
func (r *Response) ok(status int) bool {
	return r.HasCode() && status == http.StatusOK && r.Code == Success
}

// interpret applies the success rule shared by both clients: the payload is
// returned only for HTTP 200 with code Success, anything else is a service error.
func interpret(status int, payload *Response, decodeErr error) (*Response, error) {
	if payload.ok(status) {
		return payload, nil
	}
	return nil, newServiceError(status, payload, decodeErr)
}
