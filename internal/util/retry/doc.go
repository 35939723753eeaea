// Package retry provides bounded retry with exponential backoff for
// operations whose failures may be transient.
//
// [Do] invokes an operation up to a maximum number of attempts, waiting an
// increasing delay between attempts. Errors wrapped with [Fatal], or rejected
// by a caller supplied predicate, stop the loop immediately. It is used for
// bootstrap steps and for storage objects that the API server may not report
// right after they were created.
package retry
