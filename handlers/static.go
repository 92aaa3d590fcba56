package handlers

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/spf13/afero"
)

//go:embed static/*
var staticAssets embed.FS

// StaticHandler serves the dashboard assets, either the embedded copy or a
// directory on disk.
type StaticHandler struct {
	fileServer http.Handler
}

// NewStaticHandler serves files from dir, or the embedded assets when dir is
// empty.
func NewStaticHandler(dir string) (*StaticHandler, error) {
	var assets afero.Fs
	if strings.TrimSpace(dir) != "" {
		osFs := afero.NewOsFs()
		ok, err := afero.DirExists(osFs, dir)
		if err != nil {
			return nil, fmt.Errorf("stat static dir: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("static dir %q does not exist", dir)
		}
		assets = afero.NewReadOnlyFs(afero.NewBasePathFs(osFs, dir))
	} else {
		sub, err := fs.Sub(staticAssets, "static")
		if err != nil {
			return nil, fmt.Errorf("open embedded assets: %w", err)
		}
		assets = afero.FromIOFS{FS: sub}
	}

	return &StaticHandler{fileServer: http.FileServer(afero.NewHttpFs(assets).Dir("."))}, nil
}

// ServeHTTP serves static files
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" || strings.HasSuffix(r.URL.Path, ".html") {
		w.Header().Set("Cache-Control", "no-cache")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
	h.fileServer.ServeHTTP(w, r)
}
