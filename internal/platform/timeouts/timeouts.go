// Package timeouts defines shared timeout constants used across the
// allocation engine and its command-line tools.
package timeouts

import "time"

// DecisionProvider caps a single call to the external decision provider.
// The call happens outside any ledger transaction, so this bounds how long an
// autonomous episode can stall between allocations.
const DecisionProvider = 20 * time.Second

// LedgerTransaction caps one locked ledger transaction.
const LedgerTransaction = 5 * time.Second

// Shutdown limits how long telemetry exporters may flush on exit.
const Shutdown = 5 * time.Second

// CoachLockout is how long coach directions are refused after a character
// overrides a coach-directed unlock.
const CoachLockout = 30 * time.Minute
