// Package httputil provides retry support for the upstream HTTP clients.
//
// [Retry] re-runs an operation with exponential backoff while it keeps
// failing with a [RetryableError]. Clients wrap transient failures in it:
//
//   - connection errors and timeouts
//   - 5xx server errors
//   - 429 rate limit responses
//
// Any other error ends the loop immediately. [RetryWithBackoff] uses the
// defaults of 3 attempts starting at a 1 second delay.
//
// Retries run inside the caller's goroutine, so a caller that holds a
// worker slot keeps holding it across attempts and never adds concurrent
// requests.
package httputil
