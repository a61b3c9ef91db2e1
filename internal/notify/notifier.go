// Package notify is the side-channel that warns an account owner when
// their account gets locked. Only the trigger and payload live here; the
// actual email rendering and delivery belong to the downstream consumer of
// the queue.
package notify

import "context"

// Notifier delivers the account-locked warning. Callers invoke it
// fire-and-forget: a failed delivery is logged and never fails or delays
// the login response.
type Notifier interface {
	NotifyLocked(ctx context.Context, email, displayName string) error
}

// NopNotifier discards notifications. Used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyLocked(ctx context.Context, email, displayName string) error { return nil }
