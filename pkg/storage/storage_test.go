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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSink(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		backend string
		path    string
		wantErr error
	}{
		{name: "none", backend: BackendNone},
		{name: "empty backend defaults to none", backend: ""},
		{name: "binary", backend: BackendBinary, path: filepath.Join(dir, "s.bin")},
		{name: "bolt", backend: BackendBolt, path: filepath.Join(dir, "s.bolt")},
		{name: "sqlite", backend: BackendSqlite, path: filepath.Join(dir, "s.db")},
		{name: "binary without path", backend: BackendBinary, wantErr: ErrNoPath{Backend: BackendBinary}},
		{name: "unknown backend", backend: "csv", path: "x", wantErr: ErrUnknownBackend{Backend: "csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := NewSink(tt.backend, tt.path)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, sink.Store(0, []uint16{1}, time.Now()))
			require.NoError(t, sink.Close())
		})
	}
}
