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

package layers

import (
	"testing"
)

func TestSequencerMonotonic(t *testing.T) {
	s := NewSequencer()
	for i := 0; i < 1000; i++ {
		if got := s.Next(); got != uint16(i) {
			t.Fatalf("Next() = %d, want %d", got, i)
		}
	}
}

func TestSequencerWraparound(t *testing.T) {
	s := NewSequencer()
	for i := 0; i < 65536; i++ {
		s.Next()
	}
	if got := s.Next(); got != 0 {
		t.Fatalf("Next() after full cycle = %d, want 0", got)
	}
}
