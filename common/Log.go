package common

import (
	"os"

	"github.com/sirupsen/logrus"
)

// ConfigureLogger prepares the standard logrus logger. Release mode logs JSON.
func ConfigureLogger(level string, release bool) {
	logger := logrus.StandardLogger()
	logger.Out = os.Stdout
	if release {
		logger.Formatter = &logrus.JSONFormatter{}
	} else {
		logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else {
		logrus.Warnf("unknown log level '%s', keep %s", level, logger.GetLevel())
	}
	logger.ReplaceHooks(logrus.LevelHooks{})
	logger.AddHook(&DefaultFieldsHook{})
}

type DefaultFieldsHook struct {
}

func (hook *DefaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *DefaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["serviceName"] = GetServiceName()
	e.Data["serviceInstance"] = GetServiceInstance()
	return nil
}
