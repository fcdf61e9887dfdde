// Package ratelimiter provides request admission control for the HTTP
// surface.
package ratelimiter

// RateLimiter admits or rejects one request per Allow call.
type RateLimiter interface {
	Allow() bool
}
