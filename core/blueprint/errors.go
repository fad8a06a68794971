package blueprint

import "errors"

var (
	// ErrInvalidName is the panic value (wrapped) for an empty or dotted blueprint name.
	ErrInvalidName = errors.New("invalid blueprint name")

	// ErrInvalidEndpoint is the panic value (wrapped) for a local endpoint containing a dot.
	ErrInvalidEndpoint = errors.New("blueprint endpoints must not contain dots")

	// ErrInvalidHandlerName is the panic value (wrapped) when an endpoint must be
	// derived from a handler whose declared name is unusable.
	ErrInvalidHandlerName = errors.New("blueprint view function name must not contain dots")

	// ErrNilHandler is the panic value (wrapped) when neither a handler nor an
	// endpoint is given for a route.
	ErrNilHandler = errors.New("handler is nil")

	// ErrModifiedAfterRegistration is logged when a registered blueprint is changed.
	// The change is kept but does not reach applications it was registered on.
	ErrModifiedAfterRegistration = errors.New("blueprint modified after registration")

	// ErrNoStaticFolder is returned by SendStaticFile on blueprints without a static folder.
	ErrNoStaticFolder = errors.New("blueprint has no static folder")
)
