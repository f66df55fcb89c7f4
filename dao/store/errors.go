package store

import "errors"

var (
	// ErrBackupDirectoryFailed indicates a backup directory operation failed.
	ErrBackupDirectoryFailed = errors.New("backup directory operation failed")
	// ErrBackupFinalizeFailed indicates a failure while finalizing snapshot files.
	ErrBackupFinalizeFailed = errors.New("snapshot finalize failed")
	// ErrBackupOptionsNil is returned when Backup is invoked with nil options.
	ErrBackupOptionsNil = errors.New("backup options are nil")
	// ErrBackupTempFileFailed indicates a backup temporary file operation failed.
	ErrBackupTempFileFailed = errors.New("backup temporary file operation failed")
	// ErrBBoltBucketCreateFailed indicates creating a bbolt bucket failed.
	ErrBBoltBucketCreateFailed = errors.New("bbolt bucket create failed")
	// ErrBBoltSnapshotCloseFailed indicates closing a bbolt snapshot failed.
	ErrBBoltSnapshotCloseFailed = errors.New("bbolt snapshot close failed")
	// ErrBBoltSnapshotOpenFailed indicates opening a bbolt snapshot failed.
	ErrBBoltSnapshotOpenFailed = errors.New("bbolt snapshot open failed")
	// ErrBBoltSnapshotStatFailed indicates statting a bbolt snapshot failed.
	ErrBBoltSnapshotStatFailed = errors.New("bbolt snapshot stat failed")
	// ErrBBoltWriteFailed indicates writing to bbolt failed.
	ErrBBoltWriteFailed = errors.New("bbolt write failed")
	// ErrBucketNotFound is returned when the snapshot bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrCodecDecodeFailed indicates decoding a record failed.
	ErrCodecDecodeFailed = errors.New("codec decode failed")
	// ErrCodecEncodeFailed indicates encoding a record or key failed.
	ErrCodecEncodeFailed = errors.New("codec encode failed")
	// ErrCodecNil is returned when a snapshot operation is invoked without a codec.
	ErrCodecNil = errors.New("codec is nil")
	// ErrInvalidLRUSize is returned when an LRU store is configured with a non-positive bound.
	ErrInvalidLRUSize = errors.New("lru max size must be positive")
	// ErrRestoreBudgetBytesExceeded is returned when restore MaxBytes cap is hit.
	ErrRestoreBudgetBytesExceeded = errors.New("restore exceeded MaxBytes cap")
	// ErrRestoreBudgetEntriesExceeded is returned when restore MaxEntries cap is hit.
	ErrRestoreBudgetEntriesExceeded = errors.New("restore exceeded MaxEntries cap")
	// ErrRestoreOptionsNil is returned when Restore is invoked with nil options.
	ErrRestoreOptionsNil = errors.New("restore options are nil")
	// ErrSinkPanic wraps a panic recovered while a sink consumed a record.
	ErrSinkPanic = errors.New("sink panicked")
	// ErrComparatorPanic wraps a panic recovered while ordering buffered records.
	ErrComparatorPanic = errors.New("comparator panicked")
	// ErrSnapshotExportFailed indicates a failure while exporting snapshot data.
	ErrSnapshotExportFailed = errors.New("snapshot export failed")
	// ErrSnapshotNotFound is returned when a snapshot file cannot be located.
	ErrSnapshotNotFound = errors.New("snapshot file not found")
	// ErrSnapshotOpenFailed is returned when a snapshot file cannot be opened.
	ErrSnapshotOpenFailed = errors.New("snapshot open failed")
	// ErrSnapshotPathIsDirectory is returned when a snapshot path points at a directory.
	ErrSnapshotPathIsDirectory = errors.New("snapshot path is a directory")
	// ErrSnapshotPathResolveFailed indicates resolving a snapshot path failed.
	ErrSnapshotPathResolveFailed = errors.New("snapshot path resolve failed")
	// ErrSnapshotPermissionDenied is returned when snapshot file permissions prevent access.
	ErrSnapshotPermissionDenied = errors.New("snapshot permission denied")
	// ErrSnapshotReadFailed indicates a failure while reading snapshot contents.
	ErrSnapshotReadFailed = errors.New("snapshot read failed")
)
