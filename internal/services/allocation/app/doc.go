// Package app orchestrates allocation episodes: roll the adherence gate, pick
// actions with the coach strategy or the decision provider, and commit each
// action through the locked ledger.
//
// Provider calls happen against an in-memory snapshot with no lock held.
// Each chosen action is then re-validated and committed in its own ledger
// transaction. A concurrent writer for the same character can make the
// snapshot stale; the commit then fails its precondition check and the
// episode stops there.
package app
