// Package repository defines the narrow, typed facade over the external
// account store. Sentinel errors let higher layers such as the auth
// service distinguish failure scenarios without inspecting driver
// internals: ErrAccountNotFound maps to the credential-failure paths,
// while the duplicate sentinels surface unique-key violations on
// registration and federated account creation.
package repository

import "errors"

// ErrAccountNotFound is returned when no row matches the lookup key.
var ErrAccountNotFound = errors.New("account not found")

// ErrLoginNameExists is returned when an insert collides on login_name.
var ErrLoginNameExists = errors.New("login name already exists")

// ErrEmailExists is returned when an insert collides on email.
var ErrEmailExists = errors.New("email already exists")
