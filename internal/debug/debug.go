// Package debug emits wire-level protocol traces when the
// WAYLAND_DEBUG environment variable asks for them, matching the
// convention of the reference libwayland.
package debug

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// logger is separate from the standard logger so that traces follow
// WAYLAND_DEBUG alone, not the application's log level.
var logger *logrus.Logger

func init() {
	level, err := strconv.ParseInt(os.Getenv("WAYLAND_DEBUG"), 10, 0)
	if err != nil || level <= 0 {
		return
	}

	logger = logrus.New()
	logger.SetLevel(logrus.TraceLevel)
}

// Printf logs one trace line. It is a no-op unless WAYLAND_DEBUG held
// a positive number when the process started.
func Printf(format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Tracef(format, args...)
}
