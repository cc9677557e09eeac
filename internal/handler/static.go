package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

const operatorIndexFile = "index.html"

// OperatorUI serves the operator console from a directory. Requests for
// view routes (no file extension) fall back to index.html; missing assets
// are a plain 404 so a broken bundle does not come back as HTML.
type OperatorUI struct {
	dir string
}

func NewOperatorUI(dir string) *OperatorUI {
	return &OperatorUI{dir: dir}
}

func (h *OperatorUI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")

	// Rooted clean keeps ".." from climbing out of dir.
	clean := path.Clean("/" + rel)
	if info, err := os.Stat(h.file(clean)); err == nil && !info.IsDir() {
		serveUIFile(w, r, h.file(clean), clean)
		return
	}

	if path.Ext(clean) != "" {
		http.NotFound(w, r)
		return
	}

	index := h.file("/" + operatorIndexFile)
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	serveUIFile(w, r, index, "/"+operatorIndexFile)
}

func (h *OperatorUI) file(clean string) string {
	return filepath.Join(h.dir, filepath.FromSlash(clean))
}

// ServeFile would redirect ".../index.html" and reject URLs containing "..".
func serveUIFile(w http.ResponseWriter, r *http.Request, name, urlPath string) {
	f, err := os.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, path.Base(urlPath), info.ModTime(), f)
}
