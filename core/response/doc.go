// Package response builds handler.Response values: plain text, HTML,
// JSON, redirects and structured HTTP errors.
//
// A response is a function writing headers, status and body. Views return
// one and the application renders it after the after-request hooks ran:
//
//	func show(ctx handler.Context) handler.Response {
//		return response.JSON(map[string]string{"id": ctx.Param("id")})
//	}
//
// Errors returned from a response, or passed to Error, reach the error
// handlers registered on the application and its blueprints. ErrorHandler
// and JSONErrorHandler are the fallbacks used when none of them matches.
//
//	return response.Error(response.ErrNotFound.WithMessage("no such user"))
package response
