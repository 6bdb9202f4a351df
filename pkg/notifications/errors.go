package notifications

import "errors"

var (
	ErrNotFound          = errors.New("notification not found")
	ErrTenantRequired    = errors.New("tenant id is required")
	ErrUserRequired      = errors.New("user id is required")
	ErrTitleRequired     = errors.New("title is required")
	ErrStorageRequired   = errors.New("storage is required")
	ErrPrefStoreRequired = errors.New("preference store is required")
)
