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
	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"
)

func TestBoltSinkStoresRecordsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daq.bolt")
	sink, err := NewBoltSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Store(1, []uint16{10, 20}, time.Now()))
	require.NoError(t, sink.Store(3, []uint16{30}, time.Now()))
	require.NoError(t, sink.Close())

	db, err := bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	defer db.Close()

	var records []BoltRecord
	require.NoError(t, db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			return b.ForEach(func(k, v []byte) error {
				var record BoltRecord
				if err := yaml.Unmarshal(v, &record); err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
		})
	}))

	require.Len(t, records, 2)
	assert.Equal(t, uint8(1), records[0].Channel)
	assert.Equal(t, []uint16{10, 20}, records[0].Samples)
	assert.Equal(t, uint8(3), records[1].Channel)
	assert.Equal(t, []uint16{30}, records[1].Samples)
}
