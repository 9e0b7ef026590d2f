// Copyright (c) 2025, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"errors"
	"fmt"
)

var (
	ErrConfigMissing             = errors.New("required configuration missing")
	ErrUnmountTimeout            = errors.New("timed out unmounting filesystem")
	ErrUnmountFailed             = errors.New("unmounting filesystem failed")
	ErrMountTimeout              = errors.New("timed out mounting filesystems")
	ErrMountFailed               = errors.New("mounting filesystems failed")
	ErrNotMounted                = errors.New("filesystem not mounted")
	ErrDirectoryCreatePermission = errors.New("permission denied creating directory")
	ErrOwnershipChangePermission = errors.New("permission denied changing ownership")
	ErrCommandTimeout            = errors.New("command timed out")
	ErrInstallFailed             = errors.New("package installation failed")
	ErrUnknownConsumer           = errors.New("unknown consumer")
	ErrConsumerPathConflict      = errors.New("consumers share a directory")
	ErrProviderNotFound          = errors.New("provider not found")
	ErrProviderNotManageable     = errors.New("provider is not manageable")
	ErrNoSuitableProvider        = errors.New("no suitable provider found")
	ErrDuplicateProvider         = errors.New("provider already exists")
)

// BlockedError is a failure that should be shown to the operator as a blocked unit status
type BlockedError struct {
	Kind    error
	Message string
	Cause   error
}

// NewBlockedError creates a BlockedError of kind with the operator facing message
func NewBlockedError(kind error, cause error, format string, args ...any) *BlockedError {
	return &BlockedError{Kind: kind, Cause: cause, Message: fmt.Sprintf(format, args...)}
}

func (e *BlockedError) Error() string {
	switch {
	case e.Cause != nil && errors.Is(e.Cause, e.Kind):
		return e.Cause.Error()
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}

	return e.Kind.Error()
}

// Unwrap supports errors.Is against both the kind and the underlying cause
func (e *BlockedError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Cause}
}
