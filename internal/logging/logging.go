// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Setup sets the level and formatter of the standard logrus logger.  An
// unknown level falls back to info; format "json" selects the JSON
// formatter, anything else the text formatter with full timestamps.
func Setup(level, format string) {
	configure(log.StandardLogger(), os.Stdout, level, format)
}

func configure(l *log.Logger, out io.Writer, level, format string) {
	l.SetOutput(out)
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&log.JSONFormatter{})
	} else {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
}

// Component returns an entry tagged with the component name.
func Component(name string) *log.Entry {
	return log.WithField("component", name)
}
