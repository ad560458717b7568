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
	"encoding/binary"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// StatusLayerNum identifies the layer
	StatusLayerNum = 2103
	// StatusPayloadSize is the fixed size of the status payload in bytes
	StatusPayloadSize = 12
)

// StatusLayer is the payload of STATUS frames sent by the device in
// response to GET_STATUS
type StatusLayer struct {
	layers.BaseLayer
	Acquiring   bool   `json:"acquiring"`
	Channel     uint8  `json:"channel"`
	ThresholdMV uint16 `json:"thresholdMV"`
	Uptime      uint32 `json:"uptime"`
	SamplesSent uint32 `json:"samplesSent"`
}

var StatusLayerType = gopacket.RegisterLayerType(StatusLayerNum,
	gopacket.LayerTypeMetadata{Name: "StatusLayerType", Decoder: gopacket.DecodeFunc(DecodeStatusLayer)})

func (s *StatusLayer) LayerType() gopacket.LayerType {
	return StatusLayerType
}

// Serialize serializes the status payload to a buffer
func (s *StatusLayer) Serialize(buf []byte) {
	if s.Acquiring {
		buf[0] = 1
	} else {
		buf[0] = 0
	}
	buf[1] = s.Channel
	binary.LittleEndian.PutUint16(buf[2:4], s.ThresholdMV)
	binary.LittleEndian.PutUint32(buf[4:8], s.Uptime)
	binary.LittleEndian.PutUint32(buf[8:12], s.SamplesSent)
}

// SerializeTo serializes the status payload into bytes and writes the bytes to the SerializeBuffer
func (s *StatusLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(StatusPayloadSize)
	if err != nil {
		return err
	}
	s.Serialize(bytes)
	return nil
}

func (s *StatusLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < StatusPayloadSize {
		df.SetTruncated()
		return ErrMalformedPacket{What: fmt.Sprintf("status payload too short: %d bytes", len(data))}
	}
	s.BaseLayer = layers.BaseLayer{
		Contents: data[0:StatusPayloadSize],
		Payload:  []byte{},
	}
	s.Acquiring = data[0] != 0
	s.Channel = data[1]
	s.ThresholdMV = binary.LittleEndian.Uint16(data[2:4])
	s.Uptime = binary.LittleEndian.Uint32(data[4:8])
	s.SamplesSent = binary.LittleEndian.Uint32(data[8:12])
	return nil
}

func DecodeStatusLayer(data []byte, p gopacket.PacketBuilder) error {
	s := &StatusLayer{}
	err := s.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(s)
	return nil
}
