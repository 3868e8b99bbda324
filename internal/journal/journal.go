// Package journal records track edits in a SQLite database so editing
// sessions can be audited and reproduced.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"track-viewer/internal/trackstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	data_path  TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS edits (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	at         TIMESTAMP NOT NULL,
	op         TEXT NOT NULL,
	track      INTEGER NOT NULL,
	other      INTEGER,
	frame      INTEGER
);

CREATE INDEX IF NOT EXISTS idx_edits_session ON edits(session_id, at);
`

// Op names an edit operation.
type Op string

const (
	OpSplit Op = "split"
	OpJoin  Op = "join"
	OpSave  Op = "save"
)

// Edit is one recorded operation.
type Edit struct {
	At    time.Time
	Op    Op
	Track trackstore.TrackID

	// Other is the donor track of a join or the new track of a split.
	Other trackstore.TrackID

	// Frame is the split frame; unused for joins and saves.
	Frame int
}

// Journal is an append-only edit log scoped to one viewing session.
type Journal struct {
	db      *sql.DB
	session string
}

// Open opens (creating if needed) the journal database and starts a new
// session for the given data file.
func Open(path, dataPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: creating schema: %w", err)
	}

	session := uuid.NewString()
	_, err = db.Exec(`INSERT INTO sessions (id, data_path, started_at) VALUES (?, ?, ?)`,
		session, dataPath, time.Now().UTC())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: starting session: %w", err)
	}

	return &Journal{db: db, session: session}, nil
}

// Session returns the session identifier.
func (j *Journal) Session() string { return j.session }

// RecordSplit logs a split of track id at fromFrame producing newID.
func (j *Journal) RecordSplit(id, newID trackstore.TrackID, fromFrame int) error {
	return j.record(Edit{Op: OpSplit, Track: id, Other: newID, Frame: fromFrame})
}

// RecordJoin logs a join of donor into target.
func (j *Journal) RecordJoin(target, donor trackstore.TrackID) error {
	return j.record(Edit{Op: OpJoin, Track: target, Other: donor})
}

// RecordSave logs a write-back of the data file.
func (j *Journal) RecordSave() error {
	return j.record(Edit{Op: OpSave})
}

func (j *Journal) record(e Edit) error {
	_, err := j.db.Exec(
		`INSERT INTO edits (session_id, at, op, track, other, frame) VALUES (?, ?, ?, ?, ?, ?)`,
		j.session, time.Now().UTC(), string(e.Op), int64(e.Track), int64(e.Other), e.Frame)
	if err != nil {
		return fmt.Errorf("journal: recording %s: %w", e.Op, err)
	}
	return nil
}

// Edits returns the session's edits in insertion order.
func (j *Journal) Edits() ([]Edit, error) {
	rows, err := j.db.Query(
		`SELECT at, op, track, other, frame FROM edits WHERE session_id = ? ORDER BY id`,
		j.session)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	defer rows.Close()

	var edits []Edit
	for rows.Next() {
		var (
			e     Edit
			op    string
			track int64
			other sql.NullInt64
			frame sql.NullInt64
		)
		if err := rows.Scan(&e.At, &op, &track, &other, &frame); err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		e.Op = Op(op)
		e.Track = trackstore.TrackID(track)
		e.Other = trackstore.TrackID(other.Int64)
		e.Frame = int(frame.Int64)
		edits = append(edits, e)
	}
	return edits, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error { return j.db.Close() }
