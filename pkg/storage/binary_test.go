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
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinarySinkRecordFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.bin")
	sink, err := NewBinarySink(path)
	require.NoError(t, err)

	ts := time.Now()
	require.NoError(t, sink.Store(2, []uint16{100, 200, 300}, ts))
	require.NoError(t, sink.Store(5, []uint16{4095}, ts))
	require.NoError(t, sink.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, raw, (BinaryRecordHeaderSize+6)+(BinaryRecordHeaderSize+2))

	// first record
	seconds := math.Float64frombits(binary.LittleEndian.Uint64(raw[0:8]))
	assert.InDelta(t, float64(ts.UnixNano())/float64(time.Second), seconds, 0.001)
	assert.Equal(t, uint8(2), raw[8])
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(raw[9:11]))
	assert.Equal(t, uint16(100), binary.LittleEndian.Uint16(raw[11:13]))
	assert.Equal(t, uint16(200), binary.LittleEndian.Uint16(raw[13:15]))
	assert.Equal(t, uint16(300), binary.LittleEndian.Uint16(raw[15:17]))

	// second record appended after the first
	second := raw[BinaryRecordHeaderSize+6:]
	assert.Equal(t, uint8(5), second[8])
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(second[9:11]))
	assert.Equal(t, uint16(4095), binary.LittleEndian.Uint16(second[11:13]))
}

func TestBinarySinkAppendsAcrossInstances(t *testing.T) {
	// append-only file, a new sink must not truncate existing records
	path := filepath.Join(t.TempDir(), "samples.bin")

	first, err := NewBinarySink(path)
	require.NoError(t, err)
	require.NoError(t, first.Store(0, []uint16{1}, time.Now()))
	require.NoError(t, first.Close())

	second, err := NewBinarySink(path)
	require.NoError(t, err)
	require.NoError(t, second.Store(0, []uint16{2}, time.Now()))
	require.NoError(t, second.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, raw, 2*(BinaryRecordHeaderSize+2))
}
