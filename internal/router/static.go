package router

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nocturne-http/webserv/internal/config"
	"github.com/nocturne-http/webserv/internal/response"
)

// serveGET implements spec.md §4.3 step 6's GET handler: stat the
// resolved path, then serve a file, an index file, an autoindex listing,
// or a 403/404.
func serveGET(vs *config.VirtualServer, loc *config.Location, fsPath, requestPath string) []byte {
	info, err := os.Stat(fsPath)
	if err != nil {
		return errorResponse(vs, response.StatusNotFound)
	}

	if !info.IsDir() {
		data, err := os.ReadFile(fsPath)
		if err != nil {
			return errorResponse(vs, response.StatusForbidden)
		}
		return response.Build(response.StatusOK, contentTypeFor(fsPath), nil, data)
	}

	// fsPath still names a directory: resolvePath only substitutes an
	// index file when one exists, so this is the no-usable-index case.
	if loc.Autoindex {
		return response.Build(response.StatusOK, "text/html", nil, renderAutoindex(fsPath, requestPath))
	}

	return errorResponse(vs, response.StatusForbidden)
}

// renderAutoindex synthesizes the minimal HTML directory listing spec.md
// §4.3 step 6 describes: one <a href> per non-hidden entry, directories
// marked with a trailing slash.
func renderAutoindex(dirPath, requestPath string) []byte {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		entries = nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	base := strings.TrimSuffix(requestPath, "/")
	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>Index of %s</title></head><body><h1>Index of %s</h1><ul>",
		requestPath, requestPath)

	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		href := base + "/" + name
		label := name
		if e.IsDir() {
			href += "/"
			label += "/"
		}
		fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>", href, label)
	}

	b.WriteString("</ul></body></html>")
	return []byte(b.String())
}

// serveDELETE implements spec.md §4.3 step 6's DELETE handler.
func serveDELETE(vs *config.VirtualServer, fsPath string) []byte {
	info, err := os.Stat(fsPath)
	if err != nil {
		return errorResponse(vs, response.StatusNotFound)
	}
	if info.IsDir() {
		return errorResponse(vs, response.StatusForbidden)
	}
	if err := os.Remove(fsPath); err != nil {
		return errorResponse(vs, response.StatusInternalServerError)
	}
	return response.Build(response.StatusNoContent, "", nil, nil)
}

// servePOST implements spec.md §4.3 step 6's POST handler: the resolved
// path is the upload target, or (if it names an existing directory) a
// unique upload_<unix-seconds>.dat file inside it.
func servePOST(vs *config.VirtualServer, fsPath string, body []byte) []byte {
	target := fsPath
	if info, err := os.Stat(fsPath); err == nil && info.IsDir() {
		target = filepath.Join(fsPath, fmt.Sprintf("upload_%d.dat", time.Now().Unix()))
	}

	if err := os.WriteFile(target, body, 0o644); err != nil {
		return errorResponse(vs, response.StatusInternalServerError)
	}

	msg := fmt.Sprintf("Created %s\n", target)
	return response.Build(response.StatusCreated, "text/plain", nil, []byte(msg))
}
