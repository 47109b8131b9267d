package store

const schema = `
CREATE TABLE IF NOT EXISTS files (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    filepath TEXT NOT NULL,
    filename TEXT NOT NULL,
    file_extension TEXT NOT NULL,
    file_size INTEGER NOT NULL,
    video_codec TEXT,
    video_resolution TEXT,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS audio_streams (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    language TEXT NOT NULL,
    codec TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS subtitle_streams (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    language TEXT NOT NULL,
    codec TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audio_streams_file ON audio_streams(file_id);
CREATE INDEX IF NOT EXISTS idx_subtitle_streams_file ON subtitle_streams(file_id);
`
