package handler

import (
	"reflect"
	"runtime"
	"strings"
)

// Name returns the declared name of a function value, stripped of its
// package path and qualifier: "github.com/acme/app/admin.listUsers" becomes
// "listUsers", and the method value "(*Users).List-fm" becomes "List".
//
// Anonymous functions keep their compiler-generated suffix ("TestX.func1"),
// which contains a dot; callers that need a usable name must reject it.
// Returns an empty string for nil or non-function values.
func Name(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	return shortName(f.Name())
}

func shortName(full string) string {
	name := full
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if trimmed, ok := strings.CutSuffix(name, "-fm"); ok {
		name = trimmed
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
	}
	return name
}
