package cgi

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nocturne-http/webserv/internal/conn"
	"github.com/nocturne-http/webserv/internal/request"
)

// Launch starts scriptPath as a CGI child for req and returns the
// CGIState the connection attaches while the script runs. The child's
// stdout is an os.Pipe read end, left in non-blocking mode so the event
// loop can register it with epoll directly, per spec.md §4.4 — it is
// never wrapped in cmd.StdoutPipe(), since that pipe is closed by Wait,
// which this engine never calls on the polling path.
func Launch(req *request.Request, scriptPath, pathInfo string, serverPort int) (*conn.CGIState, error) {
	// scriptPath is root+rel as joined by the router and is relative
	// whenever the config's root directive is (spec.md's own example
	// config uses "root ./www"). os/exec resolves a relative Path
	// against Dir, so the script must be made absolute here or it is
	// looked up a second time under its own directory and never found.
	absScriptPath, err := filepath.Abs(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("cgi: resolve script path: %w", err)
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("cgi: stdout pipe: %w", err)
	}

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, fmt.Errorf("cgi: stdin pipe: %w", err)
	}

	cmd := exec.Command(absScriptPath)
	cmd.Dir = filepath.Dir(absScriptPath)
	cmd.Env = BuildEnv(req, absScriptPath, pathInfo, serverPort)
	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW

	if err := cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		stdinR.Close()
		stdinW.Close()
		return nil, fmt.Errorf("cgi: start: %w", err)
	}

	// The child inherited its ends of both pipes across fork; the parent
	// closes them so stdoutR sees EOF once the child exits and stdinW's
	// write is the only open writer.
	stdoutW.Close()
	stdinR.Close()

	// The body is bounded by the virtual server's client_max_body_size, so a
	// single write is accepted per spec.md §4.4 rather than staging it
	// through the event loop; a body larger than the pipe buffer would
	// block here, which this engine does not guard against.
	if len(req.Body) > 0 {
		stdinW.Write(req.Body)
	}
	stdinW.Close()

	if err := unix.SetNonblock(int(stdoutR.Fd()), true); err != nil {
		state := &conn.CGIState{Cmd: cmd}
		Kill(state)
		cmd.Wait()
		stdoutR.Close()
		return nil, fmt.Errorf("cgi: set nonblock: %w", err)
	}

	return &conn.CGIState{
		Cmd:       cmd,
		StdoutFd:  int(stdoutR.Fd()),
		StdoutR:   stdoutR,
		StartedAt: time.Now(),
	}, nil
}

// Kill sends SIGKILL to the child. It is safe to call more than once.
func Kill(state *conn.CGIState) {
	if state.Cmd.Process != nil {
		state.Cmd.Process.Signal(syscall.SIGKILL)
	}
}

// ReapResult is delivered on the channel passed to Reap once the child's
// exit status has been collected.
type ReapResult struct {
	ConnFd int
	Err    error
}

// Reap blocks on state.Cmd.Wait() and reports the outcome on out. It must
// only be started after the loop has observed EOF on the stdout pipe or
// has delivered SIGKILL, so the Wait() below is known to return without
// making the loop's own goroutine block — see spec.md §5.
func Reap(connFd int, state *conn.CGIState, out chan<- ReapResult) {
	err := state.Cmd.Wait()
	out <- ReapResult{ConnFd: connFd, Err: err}
}
