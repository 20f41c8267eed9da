package router

import (
	"encoding/json"

	"github.com/nocturne-http/webserv/internal/response"
	"github.com/nocturne-http/webserv/internal/server"
)

// statsResponse renders the metrics snapshot as JSON for the /__stats
// introspection location (SPEC_FULL.md §4.3).
func statsResponse(metrics *server.Metrics) []byte {
	if metrics == nil {
		return errorResponse(nil, response.StatusNotFound)
	}
	body, err := json.Marshal(metrics.Snapshot())
	if err != nil {
		return response.BuildError(response.StatusInternalServerError, "")
	}
	return response.Build(response.StatusOK, "application/json", nil, body)
}
