// Package tlsroots builds the trust store smctl uses to reach the
// Service Manager.
//
// The pool starts from the system roots and accepts extra CA
// certificates from PEM files, which is how deployments behind a private
// CA are reached.
package tlsroots
