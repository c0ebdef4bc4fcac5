// Package srs implements the spaced repetition scheduling engine: a pure,
// deterministic transition function from (item, grade, config, now) to the
// item's next scheduling state. The algorithm is an SM-2 variant with
// Anki-style learning and relearning steps.
//
// The engine performs no I/O and holds no state; callers persist the returned
// Result and record history themselves.
package srs
