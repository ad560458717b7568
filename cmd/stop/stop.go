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

package stop

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-daq/pkg/config"
	"jinr.ru/greenlab/go-daq/pkg/daq"
	"jinr.ru/greenlab/go-daq/pkg/storage"
)

const (
	AddressOptionName   = "address"
	PortOptionName      = "port"
	LocalPortOptionName = "local-port"
)

func NewCommand() *cobra.Command {
	var address string
	var port, localPort int
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:          "stop",
		Short:        "Stop data acquisition on the device",
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

			return client.StopAcquisition()
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Device address. E.g. %s", config.DefaultDeviceAddress))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("Device UDP port. E.g. %d", config.DefaultDevicePort))
	cmd.Flags().IntVar(&localPort, LocalPortOptionName, 0, "Local UDP port to bind")

	return cmd
}
