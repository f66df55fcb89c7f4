package dao

import (
	"context"
	"errors"

	"github.com/oshokin/mapdao/dao/store"
)

var (
	// ErrOptionsInvalid is returned when DAO options fail validation.
	ErrOptionsInvalid = errors.New("invalid dao options")
	// ErrOptionsRead is returned when an options file cannot be read or parsed.
	ErrOptionsRead = errors.New("dao options read failed")
	// ErrOptionsConflict is returned when a named DAO is reopened with different options.
	ErrOptionsConflict = errors.New("dao already opened with different options")
	// ErrTypeMismatch is returned when a named DAO is reopened with different record or key types.
	ErrTypeMismatch = errors.New("dao already opened with different types")
	// ErrNameRequired is returned when a DAO is opened without a name.
	ErrNameRequired = errors.New("dao name is required")
	// ErrSnapshotDisabled is returned by Backup and Restore when no snapshot section is configured.
	ErrSnapshotDisabled = errors.New("snapshot is not configured")
)

var _ error = (*Error)(nil)

// ErrorName represents the name of an error.
type ErrorName string

const (
	// BackupOptionsRequiredError is emitted when backup options are missing.
	BackupOptionsRequiredError ErrorName = "BackupOptionsRequiredError"

	// BucketNotFoundError is emitted when a snapshot file has no records bucket.
	BucketNotFoundError ErrorName = "BucketNotFoundError"

	// CodecError is emitted when records cannot be encoded or decoded.
	CodecError ErrorName = "CodecError"

	// OptionsConflictError is emitted when a named DAO is reopened with other options.
	OptionsConflictError ErrorName = "OptionsConflictError"

	// OptionsInvalidError is emitted when options fail to load or validate.
	OptionsInvalidError ErrorName = "OptionsInvalidError"

	// QueryPanicError is emitted when a sink, predicate or comparator panicked.
	QueryPanicError ErrorName = "QueryPanicError"

	// QueryCanceledError is emitted when a query was abandoned because its context ended.
	QueryCanceledError ErrorName = "QueryCanceledError"

	// RestoreOptionsRequiredError is emitted when restore options are missing.
	RestoreOptionsRequiredError ErrorName = "RestoreOptionsRequiredError"

	// SnapshotBudgetExceededError is emitted when MaxEntries/MaxBytes limits reject the restore.
	SnapshotBudgetExceededError ErrorName = "SnapshotBudgetExceededError"

	// SnapshotDisabledError is emitted when snapshot operations are used without configuration.
	SnapshotDisabledError ErrorName = "SnapshotDisabledError"

	// SnapshotExportError is emitted when snapshot export/finalization fails.
	SnapshotExportError ErrorName = "SnapshotExportError"

	// SnapshotIOError is emitted when low-level snapshot IO operations fail.
	SnapshotIOError ErrorName = "SnapshotIOError"

	// SnapshotNotFoundError is emitted when the snapshot file cannot be located.
	SnapshotNotFoundError ErrorName = "SnapshotNotFoundError"

	// SnapshotPermissionError is emitted when the snapshot file cannot be accessed due to permissions.
	SnapshotPermissionError ErrorName = "SnapshotPermissionError"

	// SnapshotReadError is emitted when snapshot reads/imports fail.
	SnapshotReadError ErrorName = "SnapshotReadError"

	// TypeMismatchError is emitted when a named DAO is reopened with other types.
	TypeMismatchError ErrorName = "TypeMismatchError"
)

// Error is a classified error returned by the dao package.
type Error struct {
	// Name contains one of the strings associated with an error name.
	Name ErrorName `json:"name"`

	// Message represents message or description associated with the given error name.
	Message string `json:"message"`

	// cause is the error that was classified.
	cause error
}

// NewError returns a new Error instance.
func NewError(name ErrorName, message string) *Error {
	return &Error{
		Name:    name,
		Message: message,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return string(e.Name) + ": " + e.Message
}

// Unwrap returns the classified error, so errors.Is still matches its sentinels.
func (e *Error) Unwrap() error {
	return e.cause
}

// classifyError maps sentinel-wrapped errors to named *Error values.
// Errors it does not recognize are returned unchanged.
//
//nolint:cyclop // flat classification table.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var daoErr *Error
	if errors.As(err, &daoErr) {
		return daoErr
	}

	var name ErrorName

	switch {
	case errors.Is(err, ErrOptionsInvalid),
		errors.Is(err, ErrOptionsRead),
		errors.Is(err, ErrNameRequired),
		errors.Is(err, store.ErrInvalidLRUSize):
		name = OptionsInvalidError
	case errors.Is(err, ErrOptionsConflict):
		name = OptionsConflictError
	case errors.Is(err, ErrTypeMismatch):
		name = TypeMismatchError
	case errors.Is(err, ErrSnapshotDisabled):
		name = SnapshotDisabledError
	case errors.Is(err, store.ErrBackupOptionsNil):
		name = BackupOptionsRequiredError
	case errors.Is(err, store.ErrRestoreOptionsNil):
		name = RestoreOptionsRequiredError
	case errors.Is(err, store.ErrRestoreBudgetEntriesExceeded),
		errors.Is(err, store.ErrRestoreBudgetBytesExceeded):
		name = SnapshotBudgetExceededError
	case errors.Is(err, store.ErrSnapshotNotFound):
		name = SnapshotNotFoundError
	case errors.Is(err, store.ErrSnapshotPermissionDenied):
		name = SnapshotPermissionError
	case errors.Is(err, store.ErrSinkPanic),
		errors.Is(err, store.ErrComparatorPanic):
		name = QueryPanicError
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		name = QueryCanceledError
	case errors.Is(err, store.ErrCodecEncodeFailed),
		errors.Is(err, store.ErrCodecDecodeFailed),
		errors.Is(err, store.ErrCodecNil):
		name = CodecError
	case errors.Is(err, store.ErrBucketNotFound):
		name = BucketNotFoundError
	case errors.Is(err, store.ErrBackupDirectoryFailed),
		errors.Is(err, store.ErrBackupTempFileFailed),
		errors.Is(err, store.ErrBackupFinalizeFailed),
		errors.Is(err, store.ErrSnapshotExportFailed):
		name = SnapshotExportError
	case errors.Is(err, store.ErrBBoltSnapshotOpenFailed),
		errors.Is(err, store.ErrBBoltSnapshotCloseFailed),
		errors.Is(err, store.ErrBBoltSnapshotStatFailed),
		errors.Is(err, store.ErrBBoltBucketCreateFailed),
		errors.Is(err, store.ErrBBoltWriteFailed),
		errors.Is(err, store.ErrSnapshotOpenFailed):
		name = SnapshotIOError
	case errors.Is(err, store.ErrSnapshotReadFailed),
		errors.Is(err, store.ErrSnapshotPathResolveFailed),
		errors.Is(err, store.ErrSnapshotPathIsDirectory):
		name = SnapshotReadError
	default:
		return err
	}

	return &Error{
		Name:    name,
		Message: err.Error(),
		cause:   err,
	}
}
