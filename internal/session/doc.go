// Package session owns the in-memory state of one review sitting: the item
// currently being shown, the pool of items ready to show next, and the pool
// of recently-failed items waiting on a timer to resurface within the same
// sitting, independent of their persisted due dates.
//
// A Manager is single-session and single-writer. Timer callbacks are funneled
// through the same mutex as direct calls, so every mutation of session state
// is serialised.
package session
