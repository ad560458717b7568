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

package stats

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-daq/pkg/command"
	"jinr.ru/greenlab/go-daq/pkg/config"
)

const (
	ApiPortOptionName = "api-port"
)

func NewCommand() *cobra.Command {
	var apiPort int
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:          "stats",
		Short:        "Show live statistics of a running session",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiPort != 0 {
				cfg.ApiPort = apiPort
			}

			apiClient := command.NewApiClient(cfg)
			snapshot, err := apiClient.Stats()
			if err != nil {
				return err
			}

			snapshotBytes, err := yaml.Marshal(snapshot)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(snapshotBytes))
			return nil
		},
	}
	cmd.Flags().IntVar(&apiPort, ApiPortOptionName, 0, fmt.Sprintf("Stats API port. E.g. %d", config.DefaultApiPort))

	return cmd
}
