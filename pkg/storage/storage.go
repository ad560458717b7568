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
	"time"
)

const (
	BackendNone   = "none"
	BackendBinary = "binary"
	BackendBolt   = "bolt"
	BackendSqlite = "sqlite"
	HelpBackends  = "Must be one of: none, binary, bolt, sqlite."
)

// Sink consumes decoded sample batches, one Store call per accepted
// DATA frame. Store errors are recoverable, the batch is lost and the
// session goes on. Close errors are not, an unflushed trailing batch
// would be dropped silently otherwise.
type Sink interface {
	Store(channel uint8, samples []uint16, timestamp time.Time) error
	Close() error
}

// NewSink creates a sink for the given backend name. Every backend
// except "none" requires a target path.
func NewSink(backend, path string) (Sink, error) {
	if backend != BackendNone && backend != "" && path == "" {
		return nil, ErrNoPath{Backend: backend}
	}
	switch backend {
	case BackendNone, "":
		return NewNullSink(), nil
	case BackendBinary:
		return NewBinarySink(path)
	case BackendBolt:
		return NewBoltSink(path)
	case BackendSqlite:
		return NewSqliteSink(path)
	}
	return nil, ErrUnknownBackend{Backend: backend}
}
