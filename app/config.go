package app

import "time"

// Config holds the environment-driven settings of an application.
type Config struct {
	Name     string `env:"APP_NAME" envDefault:"blueprint"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// ServerName is the host subdomain rules are matched against, e.g. "example.com".
	ServerName string `env:"APP_SERVER_NAME"`
	URLScheme  string `env:"APP_URL_SCHEME" envDefault:"http"`

	// HandlerTimeout bounds every view and hook; zero runs them inline.
	HandlerTimeout time.Duration `env:"APP_HANDLER_TIMEOUT" envDefault:"0s"`

	RootPath       string `env:"APP_ROOT_PATH"`
	StaticFolder   string `env:"APP_STATIC_FOLDER"`
	StaticURLPath  string `env:"APP_STATIC_URL_PATH"`
	TemplateFolder string `env:"APP_TEMPLATE_FOLDER"`

	RequestIDHeader string `env:"APP_REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
}
