package router

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nocturne-http/webserv/internal/config"
	"github.com/nocturne-http/webserv/internal/request"
	"github.com/nocturne-http/webserv/internal/response"
	"github.com/nocturne-http/webserv/internal/server"
)

// statsPrefix is the fixed introspection location (SPEC_FULL.md §4.3).
const statsPrefix = "/__stats"

// Route runs one request through the full pipeline of spec.md §4.3: body
// size check, location selection, redirect, method gate, path resolution
// with a traversal guard, CGI handoff, and method dispatch. vs is the
// already-selected virtual server for the connection's listening port.
func Route(req *request.Request, vs *config.VirtualServer, metrics *server.Metrics) Outcome {
	if exceedsLimit(req, vs.ClientMaxBodySize) {
		return respond(errorResponse(vs, response.StatusPayloadTooLarge))
	}

	if req.Malformed {
		return respond(errorResponse(vs, response.StatusBadRequest))
	}

	loc := config.SelectLocation(vs, req.Path)
	if loc == nil {
		return respond(errorResponse(vs, response.StatusNotFound))
	}

	if loc.Prefix == statsPrefix {
		return respond(statsResponse(metrics))
	}

	if loc.HasRedirect() {
		return respond(response.BuildRedirect(response.StatusCode(loc.RedirectCode), loc.RedirectTarget))
	}

	if !loc.AllowsMethod(req.Method) {
		return respond(errorResponse(vs, response.StatusMethodNotAllowed))
	}

	fsPath, ok := resolvePath(loc, req.Path)
	if !ok {
		return respond(errorResponse(vs, response.StatusForbidden))
	}

	if loc.CGIExtensionMatch(fsPath) {
		return Outcome{
			Kind:       StartCGI,
			ScriptPath: fsPath,
			PathInfo:   req.Path,
			Location:   loc,
		}
	}

	switch req.Method {
	case "GET":
		return respond(serveGET(vs, loc, fsPath, req.Path))
	case "DELETE":
		return respond(serveDELETE(vs, fsPath))
	case "POST":
		return respond(servePOST(vs, fsPath, req.Body))
	default:
		return respond(errorResponse(vs, response.StatusNotImplemented))
	}
}

func exceedsLimit(req *request.Request, limit int64) bool {
	if int64(len(req.Body)) > limit {
		return true
	}
	if cl := req.ContentLength(); cl >= 0 && cl > limit {
		return true
	}
	return false
}

// resolvePath implements spec.md §4.3 step 4 (root + request path
// concatenation, with an index file appended when the result names a
// directory that has a usable index) plus SPEC_FULL.md's traversal
// guard: the joined path must not clean to somewhere outside the
// location's root. The whole request path is joined, location prefix
// included, so "/up/x" under location "/up" resolves to root/up/x.
func resolvePath(loc *config.Location, reqPath string) (string, bool) {
	rel := strings.TrimPrefix(reqPath, "/")

	root := filepath.Clean(loc.Root)
	joined := filepath.Clean(filepath.Join(root, rel))

	if joined != root && !strings.HasPrefix(joined, root+string(filepath.Separator)) {
		return "", false
	}

	if loc.Index != "" {
		if info, err := os.Stat(joined); err == nil && info.IsDir() {
			withIndex := filepath.Join(joined, loc.Index)
			if _, err := os.Stat(withIndex); err == nil {
				joined = withIndex
			}
		}
	}

	return joined, true
}
