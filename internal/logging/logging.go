// Package logging builds the process logger: human readable console output on
// stderr, teed to GELF over UDP when an address is configured.
package logging

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/parisxmas/oxikpi/internal/gelf"
)

// New returns a logger at the named level ("debug", "info", "warn", "error")
// and a cleanup function that flushes it.
func New(level, gelfAddr, service string) (*zap.Logger, func(), error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "logging: level %q", level)
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), lvl),
	}

	var gw *gelf.Writer
	if gelfAddr != "" {
		gw, err = gelf.New(gelfAddr, service)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "logging: gelf %s", gelfAddr)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), gw, lvl))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("service", service))
	cleanup := func() {
		_ = log.Sync()
		if gw != nil {
			gw.Close()
		}
	}
	return log, cleanup, nil
}
