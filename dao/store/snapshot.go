package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	bolt "go.etcd.io/bbolt"
)

type (
	// BackupOptions configures Backup.
	BackupOptions[V any] struct {
		// FileName is the destination path. Empty selects DefaultSnapshotPath.
		FileName string

		// Query restricts and orders the records written to the snapshot.
		// The zero Query backs up every record.
		Query Query[V]

		// Logger receives the backup summary. Nil selects slog.Default().
		Logger *slog.Logger
	}

	// BackupSummary describes a finished backup.
	BackupSummary struct {
		// TotalEntries is the number of records written to the snapshot.
		TotalEntries int64

		// BytesWritten is the final size of the snapshot file on disk.
		BytesWritten int64
	}

	// RestoreOptions configures Restore.
	RestoreOptions struct {
		// FileName is the snapshot to read. Empty selects DefaultSnapshotPath.
		FileName string

		// MaxEntries limits how many records may be loaded.
		// Zero disables the cap.
		MaxEntries int64

		// MaxBytes limits the aggregate payload hydrated during restore.
		// Zero disables the cap.
		MaxBytes int64

		// Logger receives the restore summary. Nil selects slog.Default().
		Logger *slog.Logger
	}

	// RestoreSummary describes a finished restore.
	RestoreSummary struct {
		// TotalEntries is the number of records put into the store.
		TotalEntries int64

		// BytesRead is the aggregate payload decoded from the snapshot.
		BytesRead int64
	}

	// snapshotSink encodes every record it receives into a batch writer.
	snapshotSink[V any] struct {
		codec  Codec[V]
		writer *bboltBatchWriter

		// seq numbers records in delivery order and doubles as their bbolt key.
		seq uint64
		err error
	}

	// bboltBatchWriter buffers entries and flushes them in bounded bbolt transactions.
	bboltBatchWriter struct {
		// db is the underlying bbolt database.
		db *bolt.DB

		// pending holds the entries of the next transaction.
		pending []snapshotPair

		// pendingBytes is the payload size of pending.
		pendingBytes int
	}

	// snapshotPair represents a key/value pair staged for bbolt writes.
	snapshotPair struct {
		key   []byte
		value []byte
	}

	// restoreBudget tracks safety limits during restore.
	restoreBudget struct {
		maxEntries int64
		maxBytes   int64
		entries    int64
		bytesUsed  int64
	}
)

const (
	// boltDBSnapshotMaxBatchEntries caps how many entries we write per bbolt transaction.
	boltDBSnapshotMaxBatchEntries = 50_000

	// boltDBSnapshotMaxBatchBytes caps the total key/value payload per bbolt transaction (~64MB).
	boltDBSnapshotMaxBatchBytes = 64 << 20

	// defaultRestoreCapacity is the record slice capacity used when no better hint exists.
	defaultRestoreCapacity = 1024

	// maxRestoreCapacity caps restore preallocation to keep memory bounded.
	maxRestoreCapacity = 10_000_000
)

//nolint:gochecknoglobals // read-only bucket name.
var defaultBBoltBucketBytes = []byte("records")

// Compile-time interface assertion.
var _ Sink[any] = (*snapshotSink[any])(nil)

// Backup streams the records selected by opts.Query into a bbolt snapshot file.
//
// The snapshot is written to a temporary file next to the destination and
// renamed into place only on success, so a failed backup never clobbers an
// existing snapshot. Records are gathered with Select and share its weak
// consistency: writes committed while the backup runs may or may not be
// captured.
func Backup[K comparable, V any](
	ctx context.Context,
	s Store[K, V],
	codec Codec[V],
	opts *BackupOptions[V],
) (*BackupSummary, error) {
	if opts == nil {
		return nil, ErrBackupOptionsNil
	}

	if codec == nil {
		return nil, ErrCodecNil
	}

	fileName, err := ResolveSnapshotPath(opts.FileName)
	if err != nil {
		return nil, err
	}

	targetDir := filepath.Dir(fileName)
	targetBase := filepath.Base(fileName)

	if err := os.MkdirAll(targetDir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackupDirectoryFailed, err)
	}

	tempHandle, err := os.CreateTemp(targetDir, targetBase+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackupTempFileFailed, err)
	}

	tempFile := tempHandle.Name()

	if err := tempHandle.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackupTempFileFailed, err)
	}

	summary, err := writeSnapshot(ctx, s, codec, tempFile, opts.Query)
	if err != nil {
		_ = os.Remove(tempFile)

		return nil, err
	}

	if err := os.Rename(tempFile, fileName); err != nil {
		_ = os.Remove(tempFile)

		return nil, fmt.Errorf("%w: %w", ErrBackupFinalizeFailed, err)
	}

	loggerOrDefault(opts.Logger).Info("store: backup written",
		"file", fileName,
		"entries", summary.TotalEntries,
		"size", humanize.Bytes(uint64(max(summary.BytesWritten, 0))),
	)

	return summary, nil
}

// writeSnapshot selects records into a fresh bbolt file at path.
func writeSnapshot[K comparable, V any](
	ctx context.Context,
	s Store[K, V],
	codec Codec[V],
	path string,
	q Query[V],
) (*BackupSummary, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBBoltSnapshotOpenFailed, err)
	}

	var closed bool

	defer func() {
		if !closed {
			_ = db.Close()
		}
	}()

	sink := &snapshotSink[V]{
		codec:  codec,
		writer: newBBoltBatchWriter(db),
	}

	s.Select(ctx, sink, q)

	if sink.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotExportFailed, sink.err)
	}

	if err := sink.writer.flush(); err != nil {
		return nil, err
	}

	// An empty snapshot still needs its bucket so Restore can tell it apart
	// from a file that is not a snapshot at all.
	if sink.seq == 0 {
		if err := sink.writer.ensureBucket(); err != nil {
			return nil, err
		}
	}

	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBBoltSnapshotCloseFailed, err)
	}

	closed = true

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBBoltSnapshotStatFailed, err)
	}

	return &BackupSummary{
		TotalEntries: int64(sink.seq),
		BytesWritten: info.Size(),
	}, nil
}

// Restore replaces the contents of s with the records of a bbolt snapshot.
//
// Every record is decoded before s is touched, so a corrupt snapshot or an
// exceeded budget leaves s unchanged. The replacement itself is RemoveAll
// followed by one Put per record and is not atomic with respect to
// concurrent writers.
func Restore[K comparable, V any](s Store[K, V], codec Codec[V], opts *RestoreOptions) (*RestoreSummary, error) {
	if opts == nil {
		return nil, ErrRestoreOptionsNil
	}

	if codec == nil {
		return nil, ErrCodecNil
	}

	fileName, err := ResolveSnapshotPath(opts.FileName)
	if err != nil {
		return nil, err
	}

	db, err := bolt.Open(fileName, 0o600, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, wrapSnapshotOpenError(err, fileName)
	}

	defer db.Close()

	var (
		records = make([]V, 0, clamp(opts.MaxEntries, defaultRestoreCapacity, maxRestoreCapacity))
		budget  = &restoreBudget{
			maxEntries: opts.MaxEntries,
			maxBytes:   opts.MaxBytes,
		}
	)

	if err := db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(defaultBBoltBucketBytes)
		if bucket == nil {
			return fmt.Errorf("%w: %q", ErrBucketNotFound, defaultBBoltBucketBytes)
		}

		return bucket.ForEach(func(k, v []byte) error {
			if err := budget.track(len(k), len(v)); err != nil {
				return err
			}

			record, err := codec.Decode(v)
			if err != nil {
				return err
			}

			records = append(records, record)

			return nil
		})
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotReadFailed, err)
	}

	s.RemoveAll(Query[V]{})

	for _, record := range records {
		s.Put(record)
	}

	summary := &RestoreSummary{
		TotalEntries: int64(len(records)),
		BytesRead:    budget.bytesUsed,
	}

	loggerOrDefault(opts.Logger).Info("store: snapshot restored",
		"file", fileName,
		"entries", summary.TotalEntries,
		"size", humanize.Bytes(uint64(max(summary.BytesRead, 0))),
	)

	return summary, nil
}

// Put encodes record and stages it for the next bbolt transaction.
func (s *snapshotSink[V]) Put(record V, fc *FlowControl) {
	value, err := s.codec.Encode(record)
	if err != nil {
		fc.Fail(err)
		return
	}

	s.seq++

	var key [8]byte

	binary.BigEndian.PutUint64(key[:], s.seq)

	if err := s.writer.append(key[:], value); err != nil {
		fc.Fail(err)
	}
}

// EOF is a no-op: staged entries are flushed once Select returns.
func (s *snapshotSink[V]) EOF() {}

// Error records the failure that ended the stream.
func (s *snapshotSink[V]) Error(err error) {
	s.err = err
}

// newBBoltBatchWriter creates a writer that splits a stream into bounded transactions.
func newBBoltBatchWriter(db *bolt.DB) *bboltBatchWriter {
	return &bboltBatchWriter{
		db:      db,
		pending: make([]snapshotPair, 0, 1024),
	}
}

// append stages a key/value pair and flushes once either batch limit is hit.
// key is copied; value must not be modified by the caller afterwards.
func (b *bboltBatchWriter) append(key, value []byte) error {
	b.pending = append(b.pending, snapshotPair{
		key:   append([]byte(nil), key...),
		value: value,
	})
	b.pendingBytes += len(key) + len(value)

	if len(b.pending) >= boltDBSnapshotMaxBatchEntries || b.pendingBytes >= boltDBSnapshotMaxBatchBytes {
		return b.flush()
	}

	return nil
}

// flush writes all staged entries in a single transaction.
func (b *bboltBatchWriter) flush() error {
	if len(b.pending) == 0 {
		return nil
	}

	batch := b.pending
	b.pending = b.pending[:0]
	b.pendingBytes = 0

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(defaultBBoltBucketBytes)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBBoltBucketCreateFailed, err)
		}

		for _, entry := range batch {
			if err := bucket.Put(entry.key, entry.value); err != nil {
				return fmt.Errorf("%w: %w", ErrBBoltWriteFailed, err)
			}
		}

		return nil
	})
}

// ensureBucket creates the records bucket if nothing has been written yet.
func (b *bboltBatchWriter) ensureBucket() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(defaultBBoltBucketBytes); err != nil {
			return fmt.Errorf("%w: %w", ErrBBoltBucketCreateFailed, err)
		}

		return nil
	})
}

// track accounts for one entry, failing before any cap would be exceeded.
func (b *restoreBudget) track(keyLen, valueLen int) error {
	if b == nil {
		return nil
	}

	if b.maxEntries > 0 && b.entries >= b.maxEntries {
		return fmt.Errorf("%w: cap=%d", ErrRestoreBudgetEntriesExceeded, b.maxEntries)
	}

	entryBytes := int64(keyLen + valueLen)

	if b.maxBytes > 0 && b.bytesUsed+entryBytes > b.maxBytes {
		return fmt.Errorf("%w: cap=%d", ErrRestoreBudgetBytesExceeded, b.maxBytes)
	}

	b.entries++
	b.bytesUsed += entryBytes

	return nil
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}

	return logger
}
