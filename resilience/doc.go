// Package resilience provides retry with exponential backoff and a bulkhead
// semaphore for bounding concurrent calls to the rate-limited remote APIs.
//
// The retry loop is an explicit state machine (attempt, wait, attempt, give
// up) so the policy is testable independently of the calls it wraps. When a
// failed attempt carries a server-provided retry-after hint, the wait honors
// the hint instead of the computed backoff.
package resilience
