// Package smclient is the Go client for the EasyTV Service Manager REST API.
//
// It provides two clients that share one HTTP transport:
//
//   - SessionClient: content-owner operations authenticated by a session
//     token obtained through Login (header X-EasyTV-Session).
//   - KeyClient: backend operations authenticated by a static API key
//     (header X-EasyTV-Key).
//
// Every call succeeds only when the HTTP status is 200 and the application
// code in the response body is Success. Anything else surfaces as an *Error
// of kind KindService carrying the status, code and description.
//
// Session state is an immutable *Session swapped atomically, so a
// SessionClient may be shared between goroutines.
package smclient
