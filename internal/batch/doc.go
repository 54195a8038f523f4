// Package batch runs one call per item with bounded concurrency.
//
// It is used wherever a listing produces ids that each need their own API call:
//   - results keep the listing order
//   - a failed item is recorded on its own entry and the batch continues
//   - an optional rate limiter is waited on before every call
//   - cancelling the context aborts the whole batch
package batch
