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
	"time"

	"jinr.ru/greenlab/go-daq/pkg/log"
)

const (
	// BinaryRecordHeaderSize is the fixed part of one append-log record:
	// timestamp (8 bytes, float64 Unix seconds), channel (1 byte),
	// sample count (2 bytes), all little-endian
	BinaryRecordHeaderSize = 11
)

// BinarySink appends one record per Store call to a flat file. Every
// call is an independent durable write, there is no in-memory batching,
// so a crash never loses more than the record being written.
type BinarySink struct {
	filepath string
}

func NewBinarySink(path string) (*BinarySink, error) {
	// make sure the file can be created before the session starts
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	if err = file.Close(); err != nil {
		return nil, err
	}
	log.Info("Opened binary file: %s", path)
	return &BinarySink{filepath: path}, nil
}

// SerializeRecord serializes one append-log record to a byte slice
func SerializeRecord(channel uint8, samples []uint16, timestamp time.Time) []byte {
	buf := make([]byte, BinaryRecordHeaderSize+2*len(samples))
	seconds := float64(timestamp.UnixNano()) / float64(time.Second)
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(seconds))
	buf[8] = channel
	binary.LittleEndian.PutUint16(buf[9:11], uint16(len(samples)))
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(buf[BinaryRecordHeaderSize+2*i:], sample)
	}
	return buf
}

func (s *BinarySink) Store(channel uint8, samples []uint16, timestamp time.Time) error {
	file, err := os.OpenFile(s.filepath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write(SerializeRecord(channel, samples, timestamp))
	return err
}

func (s *BinarySink) Close() error {
	log.Info("Closed binary file: %s", s.filepath)
	return nil
}
