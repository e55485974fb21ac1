// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrDuplicateSegment          = ExistsError("segment is already registered")
	ErrInvalidConfiguration      = InvalidError("configuration file must return a table")
	ErrInvalidCursor             = InvalidError("cursor is invalid")
	ErrInvalidCursorCount        = InvalidError("cursor count is invalid")
	ErrInvalidSegment            = InvalidError("segment name or identifier is invalid")
	ErrInvalidStructPointer      = InvalidError("invalid struct pointer")
	ErrReadOnly                  = InvalidError("storage is read-only")
	ErrRequiredDatabaseDirectory = InvalidError("database directory is required")
	ErrSegmentNotFound           = NotFoundError("segment name is not registered")
	ErrStorageClosed             = InvalidError("storage is closed")
	ErrTransactionCompleted      = InvalidError("transaction has already completed")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// StorageError - a failure reported by the embedded database engine,
// preserved as the cause so callers can distinguish engine faults from
// lifecycle misuse
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError - translate a native engine failure at the boundary
//
// nil stays nil and errors from this package pass through unchanged, so
// wrapping at every exit point is safe
func NewStorageError(err error) error {
	switch err.(type) {
	case nil:
		return nil
	case *StorageError, GenericError, ExistsError, InvalidError, NotFoundError, ProcessError:
		return err
	}
	return &StorageError{Err: err}
}
