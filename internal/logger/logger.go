package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a structured logger tagged with the component name.
func New(component string) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	if os.Getenv("LOG_LEVEL") == "debug" {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}

	return l.WithField("component", component)
}
