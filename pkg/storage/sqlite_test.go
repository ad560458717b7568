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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countSamples(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM samples").Scan(&count))
	return count
}

func TestSqliteSinkFlushOnClose(t *testing.T) {
	// the trailing partial batch must survive Close, losing it would be
	// silent
	path := filepath.Join(t.TempDir(), "daq.db")
	sink, err := NewSqliteSink(path)
	require.NoError(t, err)

	samples := make([]uint16, 100)
	for i := range samples {
		samples[i] = uint16(i)
	}
	// 1500 samples: one full batch of 1000 plus a partial one of 500
	for i := 0; i < 15; i++ {
		require.NoError(t, sink.Store(1, samples, time.Now()))
	}
	require.NoError(t, sink.Close())

	assert.Equal(t, 1500, countSamples(t, path))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var endTime sql.NullFloat64
	require.NoError(t, db.QueryRow("SELECT end_time FROM sessions WHERE id = ?", sink.sessionID).Scan(&endTime))
	assert.True(t, endTime.Valid, "session end time not stamped")
}

func TestSqliteSinkBatchInvisibleUntilFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daq.db")
	sink, err := NewSqliteSink(path)
	require.NoError(t, err)
	defer sink.Close()

	samples := make([]uint16, 999)
	require.NoError(t, sink.Store(0, samples, time.Now()))
	assert.Equal(t, 0, countSamples(t, path), "pending rows visible before flush")

	require.NoError(t, sink.Store(0, []uint16{42}, time.Now()))
	assert.Equal(t, 1000, countSamples(t, path), "full batch not flushed")
}

func TestSqliteSinkRowValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daq.db")
	sink, err := NewSqliteSink(path)
	require.NoError(t, err)

	ts := time.Now()
	require.NoError(t, sink.Store(3, []uint16{100, 200, 300}, ts))
	require.NoError(t, sink.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query("SELECT session_id, timestamp, channel, value FROM samples ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	want := []uint16{100, 200, 300}
	i := 0
	for rows.Next() {
		var sessionID int64
		var timestamp float64
		var channel, value int
		require.NoError(t, rows.Scan(&sessionID, &timestamp, &channel, &value))
		assert.Equal(t, sink.sessionID, sessionID)
		assert.InDelta(t, float64(ts.UnixNano())/float64(time.Second), timestamp, 0.001)
		assert.Equal(t, 3, channel)
		assert.Equal(t, int(want[i]), value)
		i++
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, 3, i)
}

func TestSqliteSinkOneSessionPerLifetime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daq.db")

	first, err := NewSqliteSink(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewSqliteSink(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())

	assert.NotEqual(t, first.sessionID, second.sessionID)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count))
	assert.Equal(t, 2, count)
}
