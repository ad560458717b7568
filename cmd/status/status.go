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

package status

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-daq/pkg/config"
	"jinr.ru/greenlab/go-daq/pkg/daq"
	"jinr.ru/greenlab/go-daq/pkg/storage"
)

const (
	AddressOptionName   = "address"
	PortOptionName      = "port"
	LocalPortOptionName = "local-port"
)

// DeviceStatus is the printable form of a STATUS reply
type DeviceStatus struct {
	Acquiring   bool   `json:"acquiring"`
	Channel     uint8  `json:"channel"`
	ThresholdMV uint16 `json:"thresholdMV"`
	Uptime      uint32 `json:"uptime"`
	SamplesSent uint32 `json:"samplesSent"`
}

func NewCommand() *cobra.Command {
	var address string
	var port, localPort int
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:          "status",
		Short:        "Get device status",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				cfg.DeviceConfig.Address = address
			}
			if port != 0 {
				cfg.DeviceConfig.Port = port
			}
			if localPort != 0 {
				cfg.LocalPort = localPort
			}

			client, err := daq.NewClient(cfg, storage.NewNullSink())
			if err != nil {
				return err
			}
			defer client.Close()

			status, err := client.GetStatus()
			if err != nil {
				return err
			}
			if status == nil {
				return fmt.Errorf("failed to get status from %s", cfg.DeviceConfig.Address)
			}

			statusBytes, err := yaml.Marshal(&DeviceStatus{
				Acquiring:   status.Acquiring,
				Channel:     status.Channel,
				ThresholdMV: status.ThresholdMV,
				Uptime:      status.Uptime,
				SamplesSent: status.SamplesSent,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(statusBytes))
			return nil
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Device address. E.g. %s", config.DefaultDeviceAddress))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("Device UDP port. E.g. %d", config.DefaultDevicePort))
	cmd.Flags().IntVar(&localPort, LocalPortOptionName, 0, "Local UDP port to bind")

	return cmd
}
