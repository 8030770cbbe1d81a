package domain

import "errors"

// Role lifecycle errors.
var (
	ErrRoleNotFound         = errors.New("role not found")
	ErrRoleExists           = errors.New("role already exists with this name")
	ErrRoleInUse            = errors.New("users are present in system with this role so can't delete this role")
	ErrDefaultRoleImmutable = errors.New("can't do any updates on default role")
	ErrDuplicateModules     = errors.New("access modules are duplicate")
	ErrInvalidModules       = errors.New("invalid modules provided")
	ErrMissingModules       = errors.New("module names are missing")
)

// User lifecycle errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("user already exists with this email address")
	ErrSelfDelete   = errors.New("can't delete yourself")
	ErrSamePassword = errors.New("new password must be different from the current password")
	ErrNoUsersGiven = errors.New("provide user list to update data")

	// ErrSignupRejected deliberately does not mention the email so signup
	// failures cannot be used to enumerate registered accounts.
	ErrSignupRejected = errors.New("unable to create account, contact support for further assistance")
)

// Authentication and authorization errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account deactivated, contact admin for further process")
	ErrAccessDenied       = errors.New("access denied")
	ErrLoginThrottled     = errors.New("too many failed login attempts, try again later")
)

// ErrInvalidID rejects identifiers that are not well-formed object ids.
var ErrInvalidID = errors.New("invalid identifier")
