package response

import (
	"net/http"

	"github.com/dmitrymomot/blueprint/core/handler"
)

// Error returns a response that fails with err when rendered, handing it
// to the application's error handlers.
func Error(err error) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return err
	}
}
