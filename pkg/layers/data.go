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
	// DataLayerNum identifies the layer
	DataLayerNum = 2102
	// DataHeaderSize is the fixed part of the data payload preceding the samples
	DataHeaderSize = 4
	// MaxChannel is the highest ADC channel number of the device
	MaxChannel = 7
)

// DataLayer is the payload of DATA frames pushed by the device during
// acquisition. Samples are 12-bit ADC readings carried in 16-bit words.
type DataLayer struct {
	layers.BaseLayer
	Channel  uint8
	Reserved uint8
	Samples  []uint16
}

var DataLayerType = gopacket.RegisterLayerType(DataLayerNum,
	gopacket.LayerTypeMetadata{Name: "DataLayerType", Decoder: gopacket.DecodeFunc(DecodeDataLayer)})

func (d *DataLayer) LayerType() gopacket.LayerType {
	return DataLayerType
}

// Serialize serializes the data payload to a buffer which must be
// at least DataHeaderSize + 2*len(Samples) bytes long
func (d *DataLayer) Serialize(buf []byte) {
	buf[0] = d.Channel
	buf[1] = d.Reserved
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(d.Samples)))
	for i, sample := range d.Samples {
		binary.LittleEndian.PutUint16(buf[DataHeaderSize+2*i:], sample)
	}
}

// SerializeTo serializes the data payload into bytes and writes the bytes to the SerializeBuffer
func (d *DataLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(DataHeaderSize + 2*len(d.Samples))
	if err != nil {
		return err
	}
	d.Serialize(bytes)
	return nil
}

func (d *DataLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < DataHeaderSize {
		df.SetTruncated()
		return ErrMalformedPacket{What: fmt.Sprintf("data payload too short: %d bytes", len(data))}
	}
	sampleCount := int(binary.LittleEndian.Uint16(data[2:4]))
	if len(data) < DataHeaderSize+2*sampleCount {
		df.SetTruncated()
		return ErrMalformedPacket{
			What: fmt.Sprintf("declared sample count %d exceeds payload: %d bytes", sampleCount, len(data)),
		}
	}
	d.BaseLayer = layers.BaseLayer{
		Contents: data[0 : DataHeaderSize+2*sampleCount],
		Payload:  []byte{},
	}
	d.Channel = data[0]
	d.Reserved = data[1]
	d.Samples = make([]uint16, sampleCount)
	for i := 0; i < sampleCount; i++ {
		d.Samples[i] = binary.LittleEndian.Uint16(data[DataHeaderSize+2*i:])
	}
	return nil
}

func DecodeDataLayer(data []byte, p gopacket.PacketBuilder) error {
	d := &DataLayer{}
	err := d.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(d)
	return nil
}
