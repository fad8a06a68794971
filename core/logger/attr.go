package logger

import (
	"log/slog"
	"runtime"
	"time"
)

// Attribute helpers return an empty Attr for zero inputs, so calls like
// log.Info("msg", logger.Error(err)) need no nil checks.

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Latency creates an attribute for the time spent serving a request.
func Latency(d time.Duration) slog.Attr {
	return slog.Duration("latency", d)
}

// RequestID creates an attribute for HTTP request IDs.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Method creates an attribute for HTTP methods.
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Path creates an attribute for URL paths.
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// StatusCode creates an attribute for HTTP status codes.
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Action creates an attribute for action names.
func Action(action string) slog.Attr {
	return slog.String("action", action)
}

// Blueprint creates an attribute for the effective name of a blueprint.
func Blueprint(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("blueprint", name)
}

// Endpoint creates an attribute for a routing endpoint.
func Endpoint(endpoint string) slog.Attr {
	if endpoint == "" {
		return slog.Attr{}
	}
	return slog.String("endpoint", endpoint)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Stack returns stack as a "stack" attribute. A nil stack captures the
// stack of the calling goroutine.
func Stack(stack []byte) slog.Attr {
	if stack == nil {
		const size = 64 << 10
		buf := make([]byte, size)
		stack = buf[:runtime.Stack(buf, false)]
	}
	return slog.String("stack", string(stack))
}
