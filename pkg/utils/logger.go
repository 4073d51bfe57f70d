package utils

import "go.uber.org/zap"

// ServiceName identifies this service in logs and health responses.
const ServiceName = "blii-pdf-service"

// NewLogger returns a zap logger tagged with ServiceName. When debug is true,
// uses development config (human-readable, debug level); otherwise uses
// production config (JSON, info level).
func NewLogger(debug bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", ServiceName)), nil
}
