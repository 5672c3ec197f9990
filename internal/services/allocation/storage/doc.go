// Package storage defines persistence contracts for character progression,
// the power catalog, and the decision audit trail.
//
// Balance-changing work happens only inside Store.WithCharacterLock so that
// every spend re-reads and re-validates state under the character lock.
package storage
