package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// StaticHandler serves files from the public directory for requests no
// route matched.
type StaticHandler struct {
	dir string
}

// NewStaticHandler creates a new StaticHandler rooted at dir.
func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir}
}

// ServeHTTP returns the file at the request path, or index.html for a
// directory. Anything else, including paths that escape the public
// directory, gets the default not-found response.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	cleaned := filepath.Clean("/" + filepath.FromSlash(r.URL.Path))
	fullPath := filepath.Join(h.dir, cleaned)

	// Verify the resolved path is still under the public directory.
	absDir, _ := filepath.Abs(h.dir)
	absFile, _ := filepath.Abs(fullPath)
	if absFile != absDir && !strings.HasPrefix(absFile, absDir+string(filepath.Separator)) {
		http.NotFound(w, r)
		return
	}

	info, err := os.Stat(fullPath)
	if err == nil && info.IsDir() {
		fullPath = filepath.Join(fullPath, "index.html")
		info, err = os.Stat(fullPath)
	}
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fullPath)
}
