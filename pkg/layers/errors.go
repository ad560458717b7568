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
	"fmt"
)

// ErrMalformedPacket returned when a frame or payload is shorter than
// its declared or fixed size
type ErrMalformedPacket struct {
	What string
}

func (e ErrMalformedPacket) Error() string {
	return fmt.Sprintf("Malformed packet: %s", e.What)
}

// ErrInvalidMagic returned when a frame carries a wrong magic number
type ErrInvalidMagic struct {
	Magic uint16
}

func (e ErrInvalidMagic) Error() string {
	return fmt.Sprintf("Invalid magic: 0x%04x, must be 0x%04x", e.Magic, uint16(ProtocolMagic))
}
