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

package daq

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-daq/pkg/log"
)

// StartApiServer exposes the live session statistics over HTTP while
// the receive loop runs. Run it in its own goroutine.
func (c *Client) StartApiServer() error {
	log.Debug("Starting API server: port: %d", c.ApiPort)
	c.configureRouter()
	httpServer := &http.Server{
		Handler: c.Router,
		Addr:    fmt.Sprintf(":%d", c.ApiPort),
	}
	return httpServer.ListenAndServe()
}

func (c *Client) configureRouter() {
	c.Router = mux.NewRouter()
	subRouter := c.Router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/stats", c.handleStats()).Methods("GET")
}

func (c *Client) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(c.stats.Snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
