package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/blueprint/core/handler"
)

func listUsers(handler.Context) handler.Response { return nil }

type usersView struct{}

func (usersView) Show(handler.Context) handler.Response { return nil }

func (*usersView) Edit(handler.Context) handler.Response { return nil }

func TestName(t *testing.T) {
	t.Parallel()

	v := &usersView{}

	tests := []struct {
		name string
		fn   any
		want string
	}{
		{"package function", listUsers, "listUsers"},
		{"value method", usersView{}.Show, "Show"},
		{"pointer method", v.Edit, "Edit"},
		{"stdlib function", http.NotFound, "NotFound"},
		{"nil", nil, ""},
		{"not a function", 42, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, handler.Name(tt.fn))
		})
	}
}

func TestNameAnonymousContainsDot(t *testing.T) {
	t.Parallel()

	fn := func(handler.Context) handler.Response { return nil }
	assert.Contains(t, handler.Name(fn), ".")
}

func TestNameTypedNil(t *testing.T) {
	t.Parallel()

	var fn handler.HandlerFunc
	assert.Empty(t, handler.Name(fn))
}
