/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package storage

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"jinr.ru/greenlab/go-daq/pkg/log"
)

const (
	// FlushThreshold is the number of pending sample rows that triggers
	// a flush to the database
	FlushThreshold = 1000
)

type sampleRow struct {
	timestamp float64
	channel   uint8
	value     uint16
}

// SqliteSink batches sample rows in memory and flushes them inside one
// transaction once FlushThreshold rows are pending. Rows are invisible
// to readers until their batch is committed. One session row is opened
// per sink lifetime and stamped with an end time on Close.
type SqliteSink struct {
	DB        *sql.DB
	sessionID int64
	pending   []sampleRow
}

func NewSqliteSink(path string) (*SqliteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &SqliteSink{DB: db}
	if err = s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err = s.startSession(); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("Opened sqlite database: %s session: %d", path, s.sessionID)
	return s, nil
}

func (s *SqliteSink) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			start_time REAL NOT NULL,
			end_time REAL
		)`,
		`CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER NOT NULL,
			timestamp REAL NOT NULL,
			channel INTEGER NOT NULL,
			value INTEGER NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_session ON samples(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_timestamp ON samples(timestamp)`,
	}
	for _, statement := range statements {
		if _, err := s.DB.Exec(statement); err != nil {
			return err
		}
	}
	return nil
}

func (s *SqliteSink) startSession() error {
	result, err := s.DB.Exec(
		"INSERT INTO sessions (start_time) VALUES (?)",
		unixSeconds(time.Now()),
	)
	if err != nil {
		return err
	}
	s.sessionID, err = result.LastInsertId()
	return err
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func (s *SqliteSink) Store(channel uint8, samples []uint16, timestamp time.Time) error {
	seconds := unixSeconds(timestamp)
	for _, sample := range samples {
		s.pending = append(s.pending, sampleRow{
			timestamp: seconds,
			channel:   channel,
			value:     sample,
		})
	}
	if len(s.pending) >= FlushThreshold {
		return s.flush()
	}
	return nil
}

// flush writes all pending rows inside a single transaction and clears
// the batch
func (s *SqliteSink) flush() error {
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		"INSERT INTO samples (session_id, timestamp, channel, value) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		tx.Rollback()
		return err
	}

	for _, row := range s.pending {
		if _, err = stmt.Exec(s.sessionID, row.timestamp, row.channel, row.value); err != nil {
			stmt.Close()
			tx.Rollback()
			return err
		}
	}
	stmt.Close()

	if err = tx.Commit(); err != nil {
		return err
	}

	log.Debug("Flushed %d samples to database", len(s.pending))
	s.pending = s.pending[:0]
	return nil
}

// Close flushes the trailing partial batch before stamping the session
// end time. A flush failure here must reach the caller, silently
// dropping up to FlushThreshold-1 samples would go unnoticed otherwise.
func (s *SqliteSink) Close() error {
	if err := s.flush(); err != nil {
		s.DB.Close()
		return err
	}

	_, err := s.DB.Exec(
		"UPDATE sessions SET end_time = ? WHERE id = ?",
		unixSeconds(time.Now()), s.sessionID,
	)
	if err != nil {
		s.DB.Close()
		return err
	}

	log.Info("Closed sqlite database: session: %d", s.sessionID)
	return s.DB.Close()
}
