// Package static serves files from a directory through the view machinery.
//
// Dir returns a handler.HandlerFunc reading the requested file from the
// "filename" route value, so it can be bound to any rule ending in a
// catch-all segment. Blueprints use it for their static folder:
//
//	bp := blueprint.New("admin", "example.com/admin", blueprint.WithStaticFolder("static"))
//	// registered as "/static/{filename...}" under the blueprint prefix,
//	// endpoint "admin.static"
//
// Only regular files are served; a directory is reported as missing.
// Missing files surface as response.ErrNotFound so that
// application and blueprint error handlers can render them.
package static
