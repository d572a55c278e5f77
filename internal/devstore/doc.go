// Package devstore keeps the last announcement of every light seen.
//
// Records live in a single bbolt bucket keyed by device id. Only the raw
// header block is stored; reading a record parses it again with
// device.Parse, so cached and freshly discovered descriptors come from the
// same code path.
package devstore
