package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("ENVIRONMENT") == "development" {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Init applies level and format settings from configuration. Production
// environments log JSON so the lines can be ingested as structured records.
func Init(environment, level string) {
	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		log.SetLevel(lvl)
	} else if environment == "development" {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	if environment == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func Info(format string, v ...interface{}) {
	log.Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	log.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

func Warn(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

// WithFields returns an entry carrying structured fields, e.g. request or task metadata.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return log.WithFields(logrus.Fields(fields))
}

// Output is the writer log lines go to, for libraries that keep their own
// line format such as the echo request logger.
func Output() io.Writer {
	return log.Out
}
