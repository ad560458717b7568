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

package command

import (
	"errors"
	"fmt"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-daq/pkg/config"
	"jinr.ru/greenlab/go-daq/pkg/daq"
)

// ApiClient queries the stats API of a session running in another
// process on this host
type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://127.0.0.1:%d/api", cfg.ApiPort),
	}
}

func (c *ApiClient) statsUrl() string {
	return fmt.Sprintf("%s/stats", c.ApiPrefix)
}

// Stats fetches the live statistics of the running session
func (c *ApiClient) Stats() (*daq.StatsSnapshot, error) {
	r, err := req.Get(c.statsUrl())
	if err != nil {
		return nil, err
	}

	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}

	snapshot := &daq.StatsSnapshot{}
	err = r.ToJSON(snapshot)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
