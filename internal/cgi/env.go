// Package cgi launches CGI scripts as child processes and turns their
// stdout back into an HTTP response, per spec.md §4.4: a child process is
// just another pollable descriptor with a deadline, never a blocking call
// on the event loop's own goroutine.
package cgi

import (
	"os"
	"strconv"
	"strings"

	"github.com/nocturne-http/webserv/internal/request"
)

// BuildEnv assembles the CGI/1.1 environment for one invocation, per
// spec.md §4.4's required variable set.
func BuildEnv(req *request.Request, scriptPath, pathInfo string, serverPort int) []string {
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"REQUEST_METHOD=" + req.Method,
		"SCRIPT_FILENAME=" + scriptPath,
		"PATH_INFO=" + pathInfo,
		"QUERY_STRING=" + req.Query,
		"SERVER_PROTOCOL=HTTP/1.1",
		"SERVER_SOFTWARE=webserv",
		"GATEWAY_INTERFACE=CGI/1.1",
		"SERVER_PORT=" + strconv.Itoa(serverPort),
		"REDIRECT_STATUS=200",
	}

	if cl := req.ContentLength(); cl >= 0 {
		env = append(env, "CONTENT_LENGTH="+strconv.FormatInt(cl, 10))
	} else if len(req.Body) > 0 {
		env = append(env, "CONTENT_LENGTH="+strconv.Itoa(len(req.Body)))
	}
	if ct, ok := req.Headers.Get("Content-Type"); ok {
		env = append(env, "CONTENT_TYPE="+ct)
	}

	for key, values := range req.Headers.All() {
		if strings.EqualFold(key, "Content-Type") || strings.EqualFold(key, "Content-Length") {
			continue
		}
		envKey := "HTTP_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		env = append(env, envKey+"="+strings.Join(values, ", "))
	}

	return env
}
