package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"conform/internal/config"
	"conform/internal/media"
)

// Store persists file records in SQLite for the metadata service.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the metadata database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath connects to the database at an explicit location and applies the
// schema.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk database location.
func (s *Store) Path() string {
	return s.path
}

// Create inserts a record with its stream lists and returns the stored copy
// including the assigned id.
func (s *Store) Create(ctx context.Context, rec *media.FileRecord) (*media.FileRecord, error) {
	if rec == nil {
		return nil, errors.New("record is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO files (filepath, filename, file_extension, file_size, video_codec, video_resolution, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Filepath,
		rec.Filename,
		rec.Extension,
		rec.Size,
		nullableString(rec.VideoCodec),
		nullableString(rec.VideoResolution),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for i, stream := range rec.AudioStreams {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO audio_streams (file_id, position, name, language, codec) VALUES (?, ?, ?, ?, ?)`,
			id, i, stream.Name, stream.Language, stream.Codec,
		); err != nil {
			return nil, fmt.Errorf("insert audio stream: %w", err)
		}
	}
	for i, stream := range rec.SubtitleStreams {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO subtitle_streams (file_id, position, name, language, codec) VALUES (?, ?, ?, ?, ?)`,
			id, i, stream.Name, stream.Language, stream.Codec,
		); err != nil {
			return nil, fmt.Errorf("insert subtitle stream: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}
	return s.Get(ctx, id)
}

// Get fetches one record by id, or nil when absent.
func (s *Store) Get(ctx context.Context, id int64) (*media.FileRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, filepath, filename, file_extension, file_size, video_codec, video_resolution FROM files WHERE id = ?`,
		id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	if err := s.attachStreams(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns records ordered by id, with their stream lists attached.
// A non-positive limit falls back to 50.
func (s *Store) List(ctx context.Context, offset, limit int) ([]media.FileRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, filepath, filename, file_extension, file_size, video_codec, video_resolution
         FROM files ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var records []media.FileRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		if err := s.attachStreams(ctx, &records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Delete removes a record and its stream rows. Returns whether a row existed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete file: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) attachStreams(ctx context.Context, rec *media.FileRecord) error {
	audioRows, err := s.db.QueryContext(
		ctx,
		`SELECT name, language, codec FROM audio_streams WHERE file_id = ? ORDER BY position`,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("query audio streams: %w", err)
	}
	defer audioRows.Close()
	for audioRows.Next() {
		var stream media.AudioStream
		if err := audioRows.Scan(&stream.Name, &stream.Language, &stream.Codec); err != nil {
			return err
		}
		rec.AudioStreams = append(rec.AudioStreams, stream)
	}
	if err := audioRows.Err(); err != nil {
		return err
	}

	subRows, err := s.db.QueryContext(
		ctx,
		`SELECT name, language, codec FROM subtitle_streams WHERE file_id = ? ORDER BY position`,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("query subtitle streams: %w", err)
	}
	defer subRows.Close()
	for subRows.Next() {
		var stream media.SubtitleStream
		if err := subRows.Scan(&stream.Name, &stream.Language, &stream.Codec); err != nil {
			return err
		}
		rec.SubtitleStreams = append(rec.SubtitleStreams, stream)
	}
	return subRows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*media.FileRecord, error) {
	var (
		rec        media.FileRecord
		codec      sql.NullString
		resolution sql.NullString
	)
	if err := scanner.Scan(&rec.ID, &rec.Filepath, &rec.Filename, &rec.Extension, &rec.Size, &codec, &resolution); err != nil {
		return nil, err
	}
	rec.VideoCodec = codec.String
	rec.VideoResolution = resolution.String
	return &rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
