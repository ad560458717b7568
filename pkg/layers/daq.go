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
	// ProtocolMagic appears in the beginning of every frame of the
	// acquisition protocol
	ProtocolMagic = 0xDA7A
	// HeaderSize is the size of the frame header in bytes
	HeaderSize = 7
	// MaxDatagramSize is the receive buffer size, larger than any frame
	// the device produces
	MaxDatagramSize = 2048
)

const (
	// DaqLayerNum identifies the layer
	DaqLayerNum = 2100
)

type MsgType uint8

const (
	MsgTypePing   MsgType = 0x01
	MsgTypePong   MsgType = 0x02
	MsgTypeData   MsgType = 0x10
	MsgTypeCmd    MsgType = 0x20
	MsgTypeStatus MsgType = 0x30
)

func init() {
	initUnknownMsgTypes()
	initActualMsgTypes()
}

type errorDecoderForMsgType int

func (e *errorDecoderForMsgType) Decode(data []byte, p gopacket.PacketBuilder) error {
	return e
}

func (e *errorDecoderForMsgType) Error() string {
	return fmt.Sprintf("Unable to decode message type %d", int(*e))
}

var errorDecodersForMsgType [256]errorDecoderForMsgType
var MsgTypeMetadata [256]layers.EnumMetadata

func initUnknownMsgTypes() {
	for i := 0; i < 256; i++ {
		errorDecodersForMsgType[i] = errorDecoderForMsgType(i)
		MsgTypeMetadata[i] = layers.EnumMetadata{
			DecodeWith: &errorDecodersForMsgType[i],
			Name:       "UnknownMsgType",
		}
	}
}

func initActualMsgTypes() {
	MsgTypeMetadata[MsgTypePing] = layers.EnumMetadata{DecodeWith: gopacket.DecodeFunc(decodeEmptyPayload), Name: "Ping", LayerType: gopacket.LayerTypePayload}
	MsgTypeMetadata[MsgTypePong] = layers.EnumMetadata{DecodeWith: gopacket.DecodeFunc(decodeEmptyPayload), Name: "Pong", LayerType: gopacket.LayerTypePayload}
	MsgTypeMetadata[MsgTypeData] = layers.EnumMetadata{DecodeWith: gopacket.DecodeFunc(DecodeDataLayer), Name: "Data", LayerType: DataLayerType}
	MsgTypeMetadata[MsgTypeCmd] = layers.EnumMetadata{DecodeWith: gopacket.DecodeFunc(DecodeCommandLayer), Name: "Cmd", LayerType: CommandLayerType}
	MsgTypeMetadata[MsgTypeStatus] = layers.EnumMetadata{DecodeWith: gopacket.DecodeFunc(DecodeStatusLayer), Name: "Status", LayerType: StatusLayerType}
}

// LayerType returns MsgTypeMetadata.LayerType
func (t MsgType) LayerType() gopacket.LayerType {
	return MsgTypeMetadata[t].LayerType
}

// Decode calls MsgTypeMetadata.DecodeWith's decoder
func (t MsgType) Decode(data []byte, p gopacket.PacketBuilder) error {
	return MsgTypeMetadata[t].DecodeWith.Decode(data, p)
}

// String returns MsgTypeMetadata.Name
func (t MsgType) String() string {
	return MsgTypeMetadata[t].Name
}

// PING and PONG frames carry no payload
func decodeEmptyPayload(data []byte, p gopacket.PacketBuilder) error {
	return nil
}

type DaqHeader struct {
	Magic      uint16
	Type       MsgType
	Seq        uint16
	PayloadLen uint16
}

type DaqLayer struct {
	layers.BaseLayer
	DaqHeader
}

var DaqLayerType = gopacket.RegisterLayerType(DaqLayerNum,
	gopacket.LayerTypeMetadata{Name: "DaqLayerType", Decoder: gopacket.DecodeFunc(DecodeDaqLayer)})

func (d *DaqLayer) LayerType() gopacket.LayerType {
	return DaqLayerType
}

// Valid checks the magic number of the header. A frame with a wrong
// magic number is foreign traffic, not a decoding failure, so this
// check is kept out of DecodeFromBytes and callers decide whether
// to drop the frame.
func (d *DaqLayer) Valid() bool {
	return d.Magic == ProtocolMagic
}

// SerializeHeader serializes only the frame header to a buffer
func (d *DaqLayer) SerializeHeader(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], d.Magic)
	buf[2] = byte(d.Type)
	binary.LittleEndian.PutUint16(buf[3:5], d.Seq)
	binary.LittleEndian.PutUint16(buf[5:7], d.PayloadLen)
}

// SerializeTo serializes the layer into bytes and writes the bytes to the SerializeBuffer.
// PayloadLen is always computed from the already serialized payload,
// never taken from the caller.
func (d *DaqLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	payloadLen := len(b.Bytes())
	headerBytes, err := b.PrependBytes(HeaderSize)
	if err != nil {
		return err
	}
	d.PayloadLen = uint16(payloadLen)
	d.SerializeHeader(headerBytes)
	return nil
}

// DecodeFromBytes attempts to decode the byte slice as a protocol frame.
// The payload is bounded by the PayloadLen declared in the header, not
// by the physical buffer, so slack in reused receive buffers is never
// exposed to upper layers.
func (d *DaqLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < HeaderSize {
		df.SetTruncated()
		return ErrMalformedPacket{What: fmt.Sprintf("frame too short: %d bytes", len(data))}
	}

	d.Magic = binary.LittleEndian.Uint16(data[0:2])
	d.Type = MsgType(data[2])
	d.Seq = binary.LittleEndian.Uint16(data[3:5])
	d.PayloadLen = binary.LittleEndian.Uint16(data[5:7])

	if len(data) < HeaderSize+int(d.PayloadLen) {
		df.SetTruncated()
		return ErrMalformedPacket{
			What: fmt.Sprintf("declared payload length %d exceeds frame: %d bytes", d.PayloadLen, len(data)),
		}
	}

	d.BaseLayer = layers.BaseLayer{
		Contents: data[0:HeaderSize],
		Payload:  data[HeaderSize : HeaderSize+int(d.PayloadLen)],
	}

	return nil
}

func (d *DaqLayer) NextLayerType() gopacket.LayerType {
	return d.Type.LayerType()
}

func DecodeDaqLayer(data []byte, p gopacket.PacketBuilder) error {
	d := &DaqLayer{}
	err := d.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(d)
	if d.PayloadLen == 0 {
		return nil
	}
	return p.NextDecoder(d.NextLayerType())
}
