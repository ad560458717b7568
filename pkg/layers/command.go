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
	// CommandLayerNum identifies the layer
	CommandLayerNum = 2101
	// CommandPayloadSize is the fixed size of the command payload in bytes
	CommandPayloadSize = 4
)

type CommandCode uint8

const (
	CommandStartAcq  CommandCode = 0x01
	CommandStopAcq   CommandCode = 0x02
	CommandGetStatus CommandCode = 0x03
	CommandConfigure CommandCode = 0x04
)

func (c CommandCode) String() string {
	switch c {
	case CommandStartAcq:
		return "START_ACQ"
	case CommandStopAcq:
		return "STOP_ACQ"
	case CommandGetStatus:
		return "GET_STATUS"
	case CommandConfigure:
		return "CONFIGURE"
	}
	return fmt.Sprintf("UnknownCommand(0x%02x)", uint8(c))
}

type ConfigParam uint8

const (
	ConfigThresholdPercent ConfigParam = 0
	ConfigThresholdMV      ConfigParam = 1
	ConfigBatchSize        ConfigParam = 2
	ConfigChannel          ConfigParam = 3
	ConfigResetSequence    ConfigParam = 4
	ConfigLogLevel         ConfigParam = 5
)

// Device log levels carried as the LOG_LEVEL configuration parameter
const (
	DeviceLogDebug    uint16 = 0
	DeviceLogInfo     uint16 = 1
	DeviceLogWarning  uint16 = 2
	DeviceLogError    uint16 = 3
	DeviceLogCritical uint16 = 4
	DeviceLogNone     uint16 = 5
)

// CommandLayer is the payload of CMD frames. ParamType and Param are
// meaningful only for CONFIGURE, other commands carry them zero-filled
// to keep the payload size fixed.
type CommandLayer struct {
	layers.BaseLayer
	Command   CommandCode
	ParamType ConfigParam
	Param     uint16
}

var CommandLayerType = gopacket.RegisterLayerType(CommandLayerNum,
	gopacket.LayerTypeMetadata{Name: "CommandLayerType", Decoder: gopacket.DecodeFunc(DecodeCommandLayer)})

func (c *CommandLayer) LayerType() gopacket.LayerType {
	return CommandLayerType
}

// Serialize serializes the command payload to a buffer
func (c *CommandLayer) Serialize(buf []byte) {
	buf[0] = byte(c.Command)
	buf[1] = byte(c.ParamType)
	binary.LittleEndian.PutUint16(buf[2:4], c.Param)
}

// SerializeTo serializes the command payload into bytes and writes the bytes to the SerializeBuffer
func (c *CommandLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(CommandPayloadSize)
	if err != nil {
		return err
	}
	c.Serialize(bytes)
	return nil
}

func (c *CommandLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < CommandPayloadSize {
		df.SetTruncated()
		return ErrMalformedPacket{What: fmt.Sprintf("command payload too short: %d bytes", len(data))}
	}
	c.BaseLayer = layers.BaseLayer{
		Contents: data[0:CommandPayloadSize],
		Payload:  []byte{},
	}
	c.Command = CommandCode(data[0])
	c.ParamType = ConfigParam(data[1])
	c.Param = binary.LittleEndian.Uint16(data[2:4])
	return nil
}

func DecodeCommandLayer(data []byte, p gopacket.PacketBuilder) error {
	c := &CommandLayer{}
	err := c.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(c)
	return nil
}
