package types

import "errors"

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrTableNotFound = errors.New("table not found")
	ErrDuplicateID   = errors.New("entity already exists")
)

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Editor and reconciler errors.
var (
	ErrNoProject        = errors.New("no project is open")
	ErrKeyframeFloor    = errors.New("transform clip must keep at least two keyframes")
	ErrSaveInProgress   = errors.New("save already in progress")
	ErrSaveFailed       = errors.New("save failed")
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrInvalidTrackType = errors.New("invalid track type")
)
