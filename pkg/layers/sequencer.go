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

// Sequencer assigns sequence numbers to outbound frames. One instance
// is shared by all frame kinds of one client, so the device sees a
// single monotonic series wrapping at 65536. Not persisted, a process
// restart starts over from 0.
type Sequencer struct {
	seq uint16
}

func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Next returns the current sequence number and advances the counter
func (s *Sequencer) Next() uint16 {
	seq := s.seq
	s.seq++
	return seq
}
