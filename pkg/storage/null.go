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

// NullSink discards everything. Used when persistence is disabled,
// which is the default.
type NullSink struct{}

func NewNullSink() *NullSink {
	return &NullSink{}
}

func (s *NullSink) Store(channel uint8, samples []uint16, timestamp time.Time) error {
	return nil
}

func (s *NullSink) Close() error {
	return nil
}
