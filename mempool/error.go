// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error raised by the transaction pools.
type ErrorCode int

// These constants are used to identify a specific PoolError.
const (
	// ErrStorageOutOfSync indicates that one of the secondary indices of
	// a pool references a transaction that is missing from the primary
	// store, or that the indices otherwise diverged.  It is an internal
	// invariant violation, never a normal operating condition, and must
	// not be retried.
	ErrStorageOutOfSync ErrorCode = iota
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrStorageOutOfSync: "ErrStorageOutOfSync",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// PoolError identifies an error raised by a transaction pool.  The caller
// can use errors.As to obtain the error and inspect the ErrorCode field to
// ascertain the specific reason for the failure.
type PoolError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e PoolError) Error() string {
	return e.Description
}

// poolError creates a PoolError given a set of arguments.
func poolError(c ErrorCode, desc string) PoolError {
	return PoolError{ErrorCode: c, Description: desc}
}

// storageOutOfSync creates a PoolError with the ErrStorageOutOfSync code.
func storageOutOfSync(format string, args ...interface{}) PoolError {
	return poolError(ErrStorageOutOfSync, fmt.Sprintf(format, args...))
}

// IsErrorCode returns whether err is a PoolError with the passed code.
func IsErrorCode(err error, c ErrorCode) bool {
	var perr PoolError
	return errors.As(err, &perr) && perr.ErrorCode == c
}
