package logger

import (
	"go.uber.org/zap"
)

// NewNamed builds a zap logger for the given environment, named after the
// component. Development environments get the human-readable console encoder;
// everything else logs structured JSON.
func NewNamed(appEnv, name string) (*zap.Logger, error) {
	var cfg zap.Config
	if appEnv == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Named(name), nil
}
