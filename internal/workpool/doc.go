// Package workpool bounds the number of per-object operations running at once.
// A Pool hands out slots from a buffered channel and tracks launched work with a
// WaitGroup, so a caller can dispatch as fast as slots free up and then wait for
// everything it started.
//
// Panics raised by submitted work are recovered and reported as errors wrapping
// errors.ErrOperationPanic instead of crashing the process.
package workpool
