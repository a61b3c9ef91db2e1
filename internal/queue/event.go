// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// AccountLockedQueue is the queue carrying lockout warnings for account
// owners. The email worker consuming it renders and sends the actual mail.
const AccountLockedQueue = "account.locked"

// AccountLockedEvent is published when an account crosses the failed-login
// threshold and locks. It carries everything the warning email interpolates
// so the consumer never has to query the primary database.
type AccountLockedEvent struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	LockedAt    string `json:"locked_at"`
	LockSeconds int64  `json:"lock_seconds"`
}
