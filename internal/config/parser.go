package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// tokenStream is a simple cursor over the token slice produced by
// tokenize, in the same incremental-scan idiom the request parser uses.
type tokenStream struct {
	tokens []string
	pos    int
}

func (s *tokenStream) done() bool { return s.pos >= len(s.tokens) }

func (s *tokenStream) peek() (string, bool) {
	if s.done() {
		return "", false
	}
	return s.tokens[s.pos], true
}

func (s *tokenStream) next() (string, bool) {
	t, ok := s.peek()
	if ok {
		s.pos++
	}
	return t, ok
}

// untilSemicolon collects tokens up to (and consuming) the next ";",
// which is how a directive's arguments are gathered regardless of how
// many words it takes.
func (s *tokenStream) untilSemicolon() ([]string, error) {
	var args []string
	for {
		t, ok := s.next()
		if !ok {
			return nil, fmt.Errorf("config: unterminated directive (missing ';')")
		}
		if t == ";" {
			return args, nil
		}
		if t == "{" || t == "}" {
			return nil, fmt.Errorf("config: unexpected %q inside directive", t)
		}
		args = append(args, t)
	}
}

// Load reads path, parses it, and returns the fully normalized virtual
// server list. Any syntax error or unknown directive is fatal, per
// spec.md §6.
func Load(path string) ([]*VirtualServer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	tokens, err := tokenize(string(raw))
	if err != nil {
		return nil, err
	}

	s := &tokenStream{tokens: tokens}
	var servers []*VirtualServer

	for !s.done() {
		tok, _ := s.next()
		if tok != "server" {
			return nil, fmt.Errorf("config: unexpected top-level token %q", tok)
		}
		vs, err := parseServerBlock(s)
		if err != nil {
			return nil, err
		}
		servers = append(servers, vs)
	}

	if len(servers) == 0 {
		return nil, fmt.Errorf("config: no server blocks declared")
	}

	Normalize(servers)
	return servers, nil
}

func parseServerBlock(s *tokenStream) (*VirtualServer, error) {
	if tok, ok := s.next(); !ok || tok != "{" {
		return nil, fmt.Errorf("config: expected '{' after 'server'")
	}

	vs := &VirtualServer{
		Host:              "0.0.0.0",
		ErrorPages:        make(map[int]string),
		ClientMaxBodySize: DefaultMaxBodySize,
	}

	for {
		tok, ok := s.next()
		if !ok {
			return nil, fmt.Errorf("config: unterminated server block")
		}
		if tok == "}" {
			return vs, nil
		}

		switch tok {
		case "listen":
			args, err := s.untilSemicolon()
			if err != nil {
				return nil, err
			}
			port, err := parsePort(args)
			if err != nil {
				return nil, err
			}
			vs.Port = port

		case "host":
			args, err := s.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(args) != 1 {
				return nil, fmt.Errorf("config: 'host' takes exactly one argument")
			}
			vs.Host = args[0]

		case "server_name":
			args, err := s.untilSemicolon()
			if err != nil {
				return nil, err
			}
			vs.ServerNames = append(vs.ServerNames, args...)

		case "root":
			args, err := s.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(args) != 1 {
				return nil, fmt.Errorf("config: 'root' takes exactly one argument")
			}
			vs.Root = args[0]

		case "error_page":
			args, err := s.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(args) != 2 {
				return nil, fmt.Errorf("config: 'error_page' takes <code> <path>")
			}
			code, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("config: invalid error_page code %q", args[0])
			}
			vs.ErrorPages[code] = args[1]

		case "client_max_body_size":
			args, err := s.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(args) != 1 {
				return nil, fmt.Errorf("config: 'client_max_body_size' takes exactly one argument")
			}
			size, err := parseSize(args[0])
			if err != nil {
				return nil, err
			}
			vs.ClientMaxBodySize = size

		case "location":
			prefix, ok := s.next()
			if !ok {
				return nil, fmt.Errorf("config: 'location' requires a path prefix")
			}
			loc, err := parseLocationBlock(s, prefix)
			if err != nil {
				return nil, err
			}
			vs.Locations = append(vs.Locations, *loc)

		default:
			return nil, fmt.Errorf("config: unknown server directive %q", tok)
		}
	}
}

func parseLocationBlock(s *tokenStream, prefix string) (*Location, error) {
	if tok, ok := s.next(); !ok || tok != "{" {
		return nil, fmt.Errorf("config: expected '{' after 'location %s'", prefix)
	}

	loc := &Location{Prefix: prefix, Methods: make(map[string]bool)}

	for {
		tok, ok := s.next()
		if !ok {
			return nil, fmt.Errorf("config: unterminated location block")
		}
		if tok == "}" {
			return loc, nil
		}

		switch tok {
		case "root":
			args, err := s.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(args) != 1 {
				return nil, fmt.Errorf("config: 'root' takes exactly one argument")
			}
			loc.Root = args[0]

		case "index":
			args, err := s.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(args) != 1 {
				return nil, fmt.Errorf("config: 'index' takes exactly one argument")
			}
			loc.Index = args[0]

		case "autoindex":
			args, err := s.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
				return nil, fmt.Errorf("config: 'autoindex' takes 'on' or 'off'")
			}
			loc.Autoindex = args[0] == "on"

		case "allow_methods":
			args, err := s.untilSemicolon()
			if err != nil {
				return nil, err
			}
			for _, m := range args {
				loc.Methods[strings.ToUpper(m)] = true
			}

		case "return":
			args, err := s.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(args) != 2 {
				return nil, fmt.Errorf("config: 'return' takes <code> <uri>")
			}
			code, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("config: invalid return code %q", args[0])
			}
			loc.RedirectCode = code
			loc.RedirectTarget = args[1]

		case "cgi_ext":
			args, err := s.untilSemicolon()
			if err != nil {
				return nil, err
			}
			loc.CGIExtensions = append(loc.CGIExtensions, args...)

		default:
			return nil, fmt.Errorf("config: unknown location directive %q", tok)
		}
	}
}

func parsePort(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("config: 'listen' takes exactly one argument")
	}
	port, err := strconv.Atoi(args[0])
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("config: invalid port %q", args[0])
	}
	return port, nil
}

// parseSize parses a byte count with an optional K/M/G suffix, per
// spec.md §6.
func parseSize(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("config: empty size value")
	}

	mult := int64(1)
	last := s[len(s)-1]
	switch last {
	case 'K', 'k':
		mult = 1 << 10
		s = s[:len(s)-1]
	case 'M', 'm':
		mult = 1 << 20
		s = s[:len(s)-1]
	case 'G', 'g':
		mult = 1 << 30
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config: invalid size %q", s)
	}
	return n * mult, nil
}
