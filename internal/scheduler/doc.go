// Package scheduler manages era generation runs: job lifecycle, bounded
// concurrent dispatch, and retry. It provides mechanisms for asynchronous
// execution of per-era image transformations so they don't block HTTP
// request handling, while a single in-memory registry remains the source
// of truth for run state.
package scheduler
