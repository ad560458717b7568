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
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-daq/pkg/log"
)

const (
	BucketPrefix = "session_"
)

// BoltRecord is the value stored per accepted DATA frame
type BoltRecord struct {
	Timestamp float64  `json:"timestamp"`
	Channel   uint8    `json:"channel"`
	Samples   []uint16 `json:"samples"`
}

// BoltSink stores one record per Store call in a bbolt bucket created
// for the session. Keys are a monotonic record counter so iteration
// returns records in arrival order.
type BoltSink struct {
	DB     *bbolt.DB
	bucket string
	nextID uint64
}

func NewBoltSink(path string) (*BoltSink, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	bucket := BucketName(time.Now())
	if err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("Opened bolt database: %s bucket: %s", path, bucket)
	return &BoltSink{
		DB:     db,
		bucket: bucket,
	}, nil
}

func BucketName(start time.Time) string {
	return fmt.Sprintf("%s%s", BucketPrefix, start.UTC().Format("20060102_150405"))
}

func uint64ToByte(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func (s *BoltSink) Store(channel uint8, samples []uint16, timestamp time.Time) error {
	record := &BoltRecord{
		Timestamp: float64(timestamp.UnixNano()) / float64(time.Second),
		Channel:   channel,
		Samples:   samples,
	}
	recordBytes, err := yaml.Marshal(record)
	if err != nil {
		return err
	}
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(s.bucket))
		if b == nil {
			return fmt.Errorf("Bucket not found: %s", s.bucket)
		}
		if err := b.Put(uint64ToByte(s.nextID), recordBytes); err != nil {
			return err
		}
		s.nextID++
		return nil
	})
}

func (s *BoltSink) Close() error {
	log.Info("Closed bolt database")
	return s.DB.Close()
}
