package config

// Normalize applies post-parse fixups shared by every virtual server:
// a location with no explicit root inherits the enclosing server's root,
// per spec.md §6.
func Normalize(servers []*VirtualServer) {
	for _, vs := range servers {
		for i := range vs.Locations {
			if vs.Locations[i].Root == "" {
				vs.Locations[i].Root = vs.Root
			}
		}
	}
}

// Ports returns the distinct listening ports declared across all virtual
// servers, in first-seen order. Each is bound to exactly one listener,
// since spec.md §3 says records sharing a port share a listening socket.
func Ports(servers []*VirtualServer) []int {
	seen := make(map[int]bool)
	var ports []int
	for _, vs := range servers {
		if !seen[vs.Port] {
			seen[vs.Port] = true
			ports = append(ports, vs.Port)
		}
	}
	return ports
}

// SelectVirtualServer implements spec.md §4.3's virtual-server selection:
// the first record whose port matches, or the first record overall if
// none matches.
func SelectVirtualServer(servers []*VirtualServer, port int) *VirtualServer {
	for _, vs := range servers {
		if vs.Port == port {
			return vs
		}
	}
	return servers[0]
}

// SelectLocation implements spec.md §4.3's location selection: the
// longest-prefix match aligned on path segments (SPEC_FULL.md §4.3),
// ties broken by declaration order. Returns nil if nothing matches.
func SelectLocation(vs *VirtualServer, path string) *Location {
	var best *Location
	bestLen := -1

	for i := range vs.Locations {
		loc := &vs.Locations[i]
		if !prefixMatches(loc.Prefix, path) {
			continue
		}
		if len(loc.Prefix) > bestLen {
			best = loc
			bestLen = len(loc.Prefix)
		}
	}
	return best
}

// prefixMatches reports whether prefix matches path on a segment
// boundary: "/api" matches "/api" and "/api/x" but not "/apix". The root
// location "/" matches everything, per spec.md §8.
func prefixMatches(prefix, path string) bool {
	if prefix == "/" {
		return true
	}
	if len(path) < len(prefix) || path[:len(prefix)] != prefix {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
