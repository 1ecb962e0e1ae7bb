package ws

import (
	"log"
	"log/slog"
	"strings"
)

// serverLogWriter redirects the net/http server's own error log (TLS
// handshake noise, hijack failures) to the application's slog.Logger.
type serverLogWriter struct {
	logger *slog.Logger
}

func (w serverLogWriter) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	w.logger.Warn(strings.TrimRight(string(p), "\n"), "component", "http")
	return len(p), nil
}

func newServerErrorLog(logger *slog.Logger) *log.Logger {
	return log.New(serverLogWriter{logger: logger}, "", 0)
}
