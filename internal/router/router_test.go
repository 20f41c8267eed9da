package router

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nocturne-http/webserv/internal/config"
	"github.com/nocturne-http/webserv/internal/headers"
	"github.com/nocturne-http/webserv/internal/request"
	"github.com/nocturne-http/webserv/internal/server"
)

func newReq(method, path string, body []byte) *request.Request {
	return &request.Request{
		Method:  method,
		Path:    path,
		Target:  path,
		Version: "HTTP/1.1",
		Headers: headers.New(),
		Body:    body,
	}
}

func vsWithRoot(t *testing.T, locs ...config.Location) (*config.VirtualServer, string) {
	t.Helper()
	root := t.TempDir()
	for i := range locs {
		if locs[i].Root == "" {
			locs[i].Root = root
		}
	}
	return &config.VirtualServer{
		Port:              8080,
		Root:              root,
		ErrorPages:        map[int]string{},
		ClientMaxBodySize: config.DefaultMaxBodySize,
		Locations:         locs,
	}, root
}

func TestRouteServesIndexFile(t *testing.T) {
	vs, root := vsWithRoot(t, config.Location{Prefix: "/", Index: "index.html"})
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("hi\n"), 0o644))

	out := Route(newReq("GET", "/", nil), vs, server.NewMetrics())
	require.Equal(t, Respond, out.Kind)
	assert.Contains(t, string(out.Response), "HTTP/1.1 200 OK")
	assert.Contains(t, string(out.Response), "Content-Type: text/html")
	assert.Contains(t, string(out.Response), "hi\n")
}

func TestRouteNoLocationMatchIs404(t *testing.T) {
	vs, _ := vsWithRoot(t, config.Location{Prefix: "/api"})
	out := Route(newReq("GET", "/elsewhere", nil), vs, server.NewMetrics())
	assert.Contains(t, string(out.Response), "404")
}

func TestRouteMethodNotAllowed(t *testing.T) {
	vs, _ := vsWithRoot(t, config.Location{Prefix: "/"})
	out := Route(newReq("POST", "/", nil), vs, server.NewMetrics())
	assert.Contains(t, string(out.Response), "405")
}

func TestRouteRedirect(t *testing.T) {
	vs, _ := vsWithRoot(t, config.Location{Prefix: "/old", RedirectCode: 301, RedirectTarget: "/new"})
	out := Route(newReq("GET", "/old", nil), vs, server.NewMetrics())
	s := string(out.Response)
	assert.Contains(t, s, "301")
	assert.Contains(t, s, "Location: /new")
}

func TestRouteBodyTooLargeIs413(t *testing.T) {
	vs, _ := vsWithRoot(t, config.Location{Prefix: "/"})
	vs.ClientMaxBodySize = 4
	out := Route(newReq("POST", "/", []byte("way too big")), vs, server.NewMetrics())
	assert.Contains(t, string(out.Response), "413")
}

func TestRouteDeleteThenGetIs404(t *testing.T) {
	vs, root := vsWithRoot(t, config.Location{Prefix: "/", Methods: map[string]bool{"GET": true, "DELETE": true}})
	f := filepath.Join(root, "f")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	del := Route(newReq("DELETE", "/f", nil), vs, server.NewMetrics())
	assert.Contains(t, string(del.Response), "204")

	get := Route(newReq("GET", "/f", nil), vs, server.NewMetrics())
	assert.Contains(t, string(get.Response), "404")
}

func TestRoutePostToDirectoryCreatesUploadFile(t *testing.T) {
	vs, root := vsWithRoot(t, config.Location{Prefix: "/up", Methods: map[string]bool{"POST": true}})
	require.NoError(t, os.Mkdir(filepath.Join(root, "up"), 0o755))

	out := Route(newReq("POST", "/up/", []byte("hello")), vs, server.NewMetrics())
	assert.Contains(t, string(out.Response), "201")

	entries, err := os.ReadDir(filepath.Join(root, "up"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "upload_"))

	data, err := os.ReadFile(filepath.Join(root, "up", entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestRouteTraversalIsRejected(t *testing.T) {
	vs, _ := vsWithRoot(t, config.Location{Prefix: "/"})
	out := Route(newReq("GET", "/../../../etc/passwd", nil), vs, server.NewMetrics())
	assert.Contains(t, string(out.Response), "403")
}

func TestRouteCGIExtensionHandsOff(t *testing.T) {
	vs, root := vsWithRoot(t, config.Location{Prefix: "/cgi", CGIExtensions: []string{".py"}})
	require.NoError(t, os.Mkdir(filepath.Join(root, "cgi"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "cgi", "hello.py"), []byte("#!/usr/bin/env python3\n"), 0o755))

	out := Route(newReq("GET", "/cgi/hello.py", nil), vs, server.NewMetrics())
	require.Equal(t, StartCGI, out.Kind)
	assert.Equal(t, filepath.Join(root, "cgi", "hello.py"), out.ScriptPath)
}

func TestRouteStatsIntrospection(t *testing.T) {
	vs, _ := vsWithRoot(t, config.Location{Prefix: "/__stats"})
	m := server.NewMetrics()
	m.RecordRequest(200, 0)

	out := Route(newReq("GET", "/__stats", nil), vs, m)
	s := string(out.Response)
	assert.Contains(t, s, "200")
	assert.Contains(t, s, "application/json")
	assert.Contains(t, s, "requests_total")
}

func TestRouteAutoindexListsEntries(t *testing.T) {
	vs, root := vsWithRoot(t, config.Location{Prefix: "/", Autoindex: true})
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	out := Route(newReq("GET", "/", nil), vs, server.NewMetrics())
	s := string(out.Response)
	assert.Contains(t, s, "a.txt")
	assert.Contains(t, s, "sub/")
}
