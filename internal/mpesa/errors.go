package mpesa

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrTimeout marks an outbound call that hit the client deadline.
var ErrTimeout = errors.New("mpesa: request timed out")

// GatewayAuthError is returned when the OAuth exchange fails.
type GatewayAuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *GatewayAuthError) Error() string {
	if e.Err != nil && e.StatusCode == 0 {
		return fmt.Sprintf("mpesa auth: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("mpesa auth: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("mpesa auth: status %d", e.StatusCode)
}

func (e *GatewayAuthError) Unwrap() error { return e.Err }

// GatewayRequestError carries the provider's error body for a rejected STK push.
type GatewayRequestError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
	Err        error
}

func (e *GatewayRequestError) Error() string {
	switch {
	case e.Message != "" && e.Code != "":
		return fmt.Sprintf("mpesa stk push: %s (%s)", e.Message, e.Code)
	case e.Message != "":
		return "mpesa stk push: " + e.Message
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("mpesa stk push: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("mpesa stk push: status %d: %v", e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("mpesa stk push: status %d", e.StatusCode)
	}
}

func (e *GatewayRequestError) Unwrap() error { return e.Err }

// Daraja error bodies look like {"requestId":"..","errorCode":"400.002.02","errorMessage":".."}.
type errorBody struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func newRequestError(status int, body []byte) *GatewayRequestError {
	out := &GatewayRequestError{StatusCode: status, Body: truncate(body)}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		out.Code = eb.ErrorCode
		out.Message = eb.ErrorMessage
	}
	return out
}
