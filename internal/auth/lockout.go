package auth

import (
	"database/sql"
	"time"
)

// Lockout defaults: three consecutive failures lock the account for one
// minute.
const (
	DefaultLockThreshold = 3
	DefaultLockDuration  = 60 * time.Second
)

// LockState is the lockout standing of an account at a point in time.
type LockState int

const (
	Unlocked LockState = iota
	Locked
)

// LockoutPolicy is the pure state-transition logic over an account's
// failure counters. It performs no I/O; callers persist the results.
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

// NewLockoutPolicy returns the platform's default policy.
func NewLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{Threshold: DefaultLockThreshold, Duration: DefaultLockDuration}
}

// FailureResult is the outcome of a failed credential check: the counters
// to persist and whether this failure crossed into Locked (which is the
// trigger for the owner notification).
type FailureResult struct {
	FailedAttempts int
	LockedUntil    sql.NullTime
	JustLocked     bool
}

// State evaluates the account's standing at now. The bound is closed: a
// request arriving exactly at locked_until is still locked, so an account
// cannot unlock mid-check.
func (p LockoutPolicy) State(lockedUntil sql.NullTime, now time.Time) LockState {
	if lockedUntil.Valid && !now.After(lockedUntil.Time) {
		return Locked
	}
	return Unlocked
}

// OnFailure transitions an unlocked account after a failed credential
// check. The counter increments; reaching the threshold sets locked_until,
// otherwise locked_until is explicitly cleared so a stale past lock never
// lingers alongside a sub-threshold counter.
func (p LockoutPolicy) OnFailure(failedAttempts int, now time.Time) FailureResult {
	res := FailureResult{FailedAttempts: failedAttempts + 1}
	if res.FailedAttempts >= p.Threshold {
		res.LockedUntil = sql.NullTime{Time: now.Add(p.Duration), Valid: true}
		res.JustLocked = true
	}
	return res
}

// OnSuccess resets the counters after a successful login, regardless of
// prior state.
func (p LockoutPolicy) OnSuccess() (failedAttempts int, lockedUntil sql.NullTime) {
	return 0, sql.NullTime{}
}

// AttemptsLeft is how many more failures the account tolerates before
// locking.
func (p LockoutPolicy) AttemptsLeft(failedAttempts int) int {
	left := p.Threshold - failedAttempts
	if left < 0 {
		return 0
	}
	return left
}

// RemainingSeconds is the lock time left at now, rounded up to whole
// seconds so a lock never reports zero while still in force.
func (p LockoutPolicy) RemainingSeconds(lockedUntil, now time.Time) int64 {
	d := lockedUntil.Sub(now)
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}
