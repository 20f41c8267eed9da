package router

import (
	"os"

	"github.com/nocturne-http/webserv/internal/config"
	"github.com/nocturne-http/webserv/internal/response"
)

// errorResponse renders code using the virtual server's configured custom
// error page if one is set and loadable, otherwise the built-in HTML
// stub, per spec.md §4.3's response-header rule.
func errorResponse(vs *config.VirtualServer, code response.StatusCode) []byte {
	if vs != nil {
		if path, ok := vs.ErrorPages[int(code)]; ok {
			if data, err := os.ReadFile(path); err == nil {
				return response.Build(code, contentTypeFor(path), nil, data)
			}
		}
	}
	return response.BuildError(code, "")
}
