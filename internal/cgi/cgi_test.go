package cgi

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nocturne-http/webserv/internal/headers"
	"github.com/nocturne-http/webserv/internal/request"
)

func newRequest(method, query string, body []byte) *request.Request {
	h := headers.New()
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	h.Set("X-Custom", "probe")
	if len(body) > 0 {
		h.Set("Content-Length", strconv.Itoa(len(body)))
	}
	return &request.Request{
		Method:  method,
		Path:    "/cgi-bin/hello.sh",
		Query:   query,
		Version: "HTTP/1.1",
		Headers: h,
		Body:    body,
	}
}

func TestBuildEnvIncludesRequiredVariables(t *testing.T) {
	req := newRequest("GET", "a=1", nil)
	env := BuildEnv(req, "/www/cgi-bin/hello.sh", "/extra", 8080)

	want := []string{
		"REQUEST_METHOD=GET",
		"SCRIPT_FILENAME=/www/cgi-bin/hello.sh",
		"PATH_INFO=/extra",
		"QUERY_STRING=a=1",
		"SERVER_PROTOCOL=HTTP/1.1",
		"REDIRECT_STATUS=200",
		"SERVER_PORT=8080",
	}
	for _, w := range want {
		assert.Contains(t, env, w)
	}
}

func TestBuildEnvPrefixesCustomHeaders(t *testing.T) {
	req := newRequest("POST", "", []byte("x=1"))
	env := BuildEnv(req, "/www/cgi-bin/hello.sh", "", 80)

	assert.Contains(t, env, "HTTP_X_CUSTOM=probe")
	assert.Contains(t, env, "CONTENT_TYPE=application/x-www-form-urlencoded")
}

func TestBuildResponseParsesHeaderBlock(t *testing.T) {
	out := []byte("Status: 201 Created\r\nContent-Type: text/plain\r\nX-Foo: bar\r\n\r\nhello")
	resp := BuildResponse(out)

	s := string(resp)
	assert.Contains(t, s, "HTTP/1.1 201 Created")
	assert.Contains(t, s, "Content-Type: text/plain")
	assert.Contains(t, s, "X-Foo: bar")
	assert.Contains(t, s, "hello")
}

func TestBuildResponseDefaultsTo200WhenNoStatusLine(t *testing.T) {
	out := []byte("Content-Type: text/html\n\n<p>hi</p>")
	resp := BuildResponse(out)
	assert.Contains(t, string(resp), "HTTP/1.1 200 OK")
}

func TestBuildResponseTreatsWholeOutputAsBodyWhenNoBlankLine(t *testing.T) {
	out := []byte("no headers here, just text")
	resp := BuildResponse(out)

	s := string(resp)
	assert.Contains(t, s, "HTTP/1.1 200 OK")
	assert.Contains(t, s, "Content-Type: text/plain")
	assert.Contains(t, s, "no headers here, just text")
}

func TestLaunchRunsScriptAndProducesOutput(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "hello.sh")
	body := "#!/bin/sh\nprintf 'Content-Type: text/plain\\r\\n\\r\\nhi from cgi'\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	req := newRequest("GET", "", nil)
	state, err := Launch(req, script, "", 8080)
	require.NoError(t, err)
	require.NotNil(t, state.Cmd)

	var collected []byte
	deadline := time.Now().Add(2 * time.Second)
	buf := make([]byte, 4096)
	for time.Now().Before(deadline) {
		n, rerr := state.StdoutR.Read(buf)
		if n > 0 {
			collected = append(collected, buf[:n]...)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			time.Sleep(5 * time.Millisecond)
		}
	}

	out := make(chan ReapResult, 1)
	go Reap(0, state, out)
	select {
	case res := <-out:
		assert.Equal(t, 0, res.ConnFd)
	case <-time.After(2 * time.Second):
		t.Fatal("reap did not complete")
	}

	assert.Contains(t, string(collected), "hi from cgi")
}

// TestLaunchRunsScriptWithRelativeRoot mirrors spec.md's own example
// config and internal/config/config_test.go, both of which use
// "root ./www" — a relative root, so the joined script path the router
// hands to Launch is relative too. A prior version of Launch set
// cmd.Dir without first making the path absolute, which made os/exec
// resolve the relative path a second time against its own directory and
// fail with "no such file or directory" under this exact, expected
// configuration.
func TestLaunchRunsScriptWithRelativeRoot(t *testing.T) {
	workDir := t.TempDir()
	cgiDir := filepath.Join(workDir, "www", "cgi-bin")
	require.NoError(t, os.MkdirAll(cgiDir, 0o755))

	script := filepath.Join(cgiDir, "test.sh")
	body := "#!/bin/sh\nprintf 'Content-Type: text/plain\\r\\n\\r\\nrelative ok'\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workDir))
	defer os.Chdir(oldWD)

	relScript := filepath.Join("www", "cgi-bin", "test.sh")
	require.False(t, filepath.IsAbs(relScript))

	req := newRequest("GET", "", nil)
	state, err := Launch(req, relScript, "", 8080)
	require.NoError(t, err)
	require.NotNil(t, state.Cmd)

	var collected []byte
	deadline := time.Now().Add(2 * time.Second)
	buf := make([]byte, 4096)
	for time.Now().Before(deadline) {
		n, rerr := state.StdoutR.Read(buf)
		if n > 0 {
			collected = append(collected, buf[:n]...)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			time.Sleep(5 * time.Millisecond)
		}
	}

	out := make(chan ReapResult, 1)
	go Reap(0, state, out)
	select {
	case res := <-out:
		assert.Equal(t, 0, res.ConnFd)
	case <-time.After(2 * time.Second):
		t.Fatal("reap did not complete")
	}

	assert.Contains(t, string(collected), "relative ok")
}
