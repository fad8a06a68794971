package template

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"reflect"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidName      = errors.New("invalid template name")
)

// Env is the template environment shared by the application and its
// blueprints. Filters, Tests and Globals are plain maps so registrations can
// install entries directly; they are read on every render.
type Env struct {
	Filters map[string]any
	Tests   map[string]any
	Globals map[string]any

	paths []string
}

// New creates an environment searching the given directories in order.
func New(paths ...string) *Env {
	e := &Env{
		Filters: make(map[string]any),
		Tests:   make(map[string]any),
		Globals: make(map[string]any),
	}
	for _, p := range paths {
		e.AddSearchPath(p)
	}
	return e
}

// AddSearchPath appends dir to the template search path. Directories added
// first take precedence; empty and duplicate entries are ignored.
func (e *Env) AddSearchPath(dir string) {
	if dir == "" {
		return
	}
	for _, p := range e.paths {
		if p == dir {
			return
		}
	}
	e.paths = append(e.paths, dir)
}

// SearchPaths returns the template search path.
func (e *Env) SearchPaths() []string {
	out := make([]string, len(e.paths))
	copy(out, e.paths)
	return out
}

// FuncMap returns the functions available to templates: function globals,
// then tests, then filters, later groups overriding earlier names.
func (e *Env) FuncMap() template.FuncMap {
	funcs := make(template.FuncMap, len(e.Filters)+len(e.Tests)+len(e.Globals))
	for name, v := range e.Globals {
		if isFunc(v) {
			funcs[name] = v
		}
	}
	for name, v := range e.Tests {
		funcs[name] = v
	}
	for name, v := range e.Filters {
		funcs[name] = v
	}
	return funcs
}

// Data merges non-function globals under data; data wins on conflicts.
func (e *Env) Data(data map[string]any) map[string]any {
	out := make(map[string]any, len(e.Globals)+len(data))
	for name, v := range e.Globals {
		if !isFunc(v) {
			out[name] = v
		}
	}
	for k, v := range data {
		out[k] = v
	}
	return out
}

// Lookup returns the source of the named template from the first search
// path that holds it.
func (e *Env) Lookup(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, dir := range e.paths {
		src, err := fs.ReadFile(os.DirFS(dir), name)
		if err == nil {
			return src, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read template %q: %w", name, err)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

// Render executes the named template into w. Output is buffered so a
// failing template writes nothing.
func (e *Env) Render(w io.Writer, name string, data map[string]any) error {
	// TODO: cache parsed templates once the owning application is sealed.
	src, err := e.Lookup(name)
	if err != nil {
		return err
	}
	return e.execute(w, name, string(src), data)
}

// RenderString executes an inline template source into w.
func (e *Env) RenderString(w io.Writer, src string, data map[string]any) error {
	return e.execute(w, "inline", src, data)
}

func (e *Env) execute(w io.Writer, name, src string, data map[string]any) error {
	tmpl, err := template.New(name).Funcs(e.FuncMap()).Parse(src)
	if err != nil {
		return fmt.Errorf("parse template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, e.Data(data)); err != nil {
		return fmt.Errorf("execute template %q: %w", name, err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
