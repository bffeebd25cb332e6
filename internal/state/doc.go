// Package state persists job history in a SQLite database under the
// configured state directory. Each successfully committed workflow run is
// recorded with a fingerprint of the final artifact, which powers the
// history command and post-hoc auditing of what omzet rewrote.
package state
