// Package logging owns the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu  sync.Mutex
	log *logrus.Logger
)

// Init configures the shared logger from LOG_LEVEL (default info) and
// LOG_FORMAT (json or text). Call once from main.
func Init() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(os.Stdout)
	return log
}

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()

	lvl, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		lvl = "info"
	}
	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	l.SetOutput(out)
	return l
}

// Logger returns the shared logger, initialising it on first use.
func Logger() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		log = newLogger(os.Stdout)
	}
	return log
}

// New returns an entry tagged with the component name.
func New(component string) *logrus.Entry {
	return Logger().WithField("component", component)
}
