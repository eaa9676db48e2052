// Package schedule dispatches segment transcriptions across a bounded
// worker pool. Segments are independent, so they run concurrently up to a
// configured ceiling; an authentication failure on any segment stops new
// dispatch for the whole run.
package schedule
