// Package router implements the per-request routing pipeline of spec.md
// §4.3: virtual-server/location selection, the GET/DELETE/POST method
// handlers, and the CGI handoff decision.
package router

import "github.com/nocturne-http/webserv/internal/config"

// Kind tags the two shapes a routing decision can take, in place of
// polymorphic handler dispatch (spec.md §9's design note).
type Kind int

const (
	// Respond means the response is fully built; Outcome.Response holds it.
	Respond Kind = iota
	// StartCGI means the router matched a CGI extension; the caller must
	// hand ScriptPath/PathInfo/Location to the cgi package and must not
	// mark the connection ready-to-write itself.
	StartCGI
)

// Outcome is the result of routing one request.
type Outcome struct {
	Kind       Kind
	Response   []byte
	ScriptPath string
	PathInfo   string
	Location   *config.Location
}

func respond(data []byte) Outcome {
	return Outcome{Kind: Respond, Response: data}
}
