package smclient

import "strconv"

// ResultCode is the application-level status embedded in every response body.
// It is independent of the HTTP status code.
type ResultCode int

const (
	// Success is the only code that, together with HTTP 200, marks a call as successful.
	Success ResultCode = 0
	// Unauthorized means the session or key was rejected. SessionClient drops
	// its session when it sees this code on an auto-logout eligible call.
	Unauthorized ResultCode = 1
)

// String returns a readable name for known codes and the number otherwise.
func (c ResultCode) String() string {
	switch c {
	case Success:
		return "success"
	case Unauthorized:
		return "unauthorized"
	default:
		return strconv.Itoa(int(c))
	}
}
