// Package transfer drives a single file upload to the cloudbox API and
// reports it as a stream of events: zero or more progress percentages
// followed by exactly one Outcome.
//
// The upload is sent as a multipart form with one field named "file". The
// body length is computed up front when the file size is known, which makes
// progress length-computable; streams of unknown size upload without
// progress events.
//
// A Transfer can be cancelled at any time. Cancel aborts the HTTP request
// and, once it returns, no further event is delivered. The event channel is
// closed when the worker goroutine exits. No retries are attempted.
package transfer
