package swagger

import "github.com/Sticlo/ProyectoCobra/pkg/logger"

// Option applies a configuration option to Register.
type Option func(*options)

type options struct {
	baseURL string
	logger  logger.Logger
}

// WithBaseURL sets the public URL printed in the startup log line.
func WithBaseURL(url string) Option {
	return func(o *options) {
		if url != "" {
			o.baseURL = url
		}
	}
}

// WithLogger sets the logger used by Register and the validator.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{baseURL: "http://localhost:3000"}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Named("swagger")
	}
	return o
}
