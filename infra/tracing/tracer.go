package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// InitGlobalTracer installs a jaeger tracer configured from the JAEGER_* environment variables.
// The returned closer flushes pending spans.
func InitGlobalTracer(serviceName string) (io.Closer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}
	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(logrusAdapter{}))
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	logrus.Infof("tracing enabled, service name %s", cfg.ServiceName)
	return closer, nil
}

type logrusAdapter struct{}

func (logrusAdapter) Error(msg string) {
	logrus.Error(msg)
}

func (logrusAdapter) Infof(msg string, args ...interface{}) {
	logrus.Infof(msg, args...)
}
