package static

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrymomot/blueprint/core/handler"
	"github.com/dmitrymomot/blueprint/core/response"
)

// Param is the route value holding the requested file, as in
// "/static/{filename...}".
const Param = "filename"

// dirConfig holds configuration for directory serving
type dirConfig struct {
	root   string
	param  string
	maxAge time.Duration
}

// DirOption configures directory serving behavior
type DirOption func(*dirConfig)

// WithParam reads the requested file from another route value.
func WithParam(name string) DirOption {
	return func(c *dirConfig) {
		c.param = name
	}
}

// WithMaxAge sets Cache-Control on served files.
// Zero (the default) leaves caching headers untouched.
func WithMaxAge(maxAge time.Duration) DirOption {
	return func(c *dirConfig) {
		c.maxAge = maxAge
	}
}

// Dir creates a view serving files below root. The file is taken from the
// route value named by Param, so the rule must declare it:
//
//	app.AddURLRule("/assets/{filename...}", "assets", static.Dir("web/assets"), router.Options{})
//
// Directories are never served. Paths escaping root and missing files
// fail with response.ErrNotFound, handled like any other view error.
// A root that does not exist yields 404 for every request; use Check to
// fail fast at startup instead.
func Dir(root string, opts ...DirOption) handler.HandlerFunc {
	config := &dirConfig{
		root:  filepath.Clean(root),
		param: Param,
	}
	for _, opt := range opts {
		opt(config)
	}

	fsys := filesOnly{fs: http.Dir(config.root)}
	fileServer := http.FileServer(fsys)

	return func(ctx handler.Context) handler.Response {
		name := ctx.Param(config.param)
		if !fs.ValidPath(name) || name == "." {
			return response.Error(response.ErrNotFound)
		}
		f, err := fsys.Open("/" + name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				return response.Error(response.ErrNotFound)
			}
			return response.Error(err)
		}
		_ = f.Close()

		resp := handler.Response(func(w http.ResponseWriter, r *http.Request) error {
			req := r.Clone(r.Context())
			req.URL.Path = "/" + name
			req.URL.RawPath = ""
			fileServer.ServeHTTP(w, req)
			return nil
		})
		if config.maxAge > 0 {
			resp = response.WithCache(resp, config.maxAge)
		}
		return resp
	}
}

// Check reports whether root exists and is a directory.
func Check(root string) error {
	return checkDir(filepath.Clean(root))
}

// File reports whether name resolves to a regular file below root.
func File(root, name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(name)))
	return err == nil && info.Mode().IsRegular()
}
