package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/breez/lnseed/discovery"
	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// logWriter sends logging output to both standard out and, once a rotator
// has been attached, a rolling log file.
type logWriter struct {
	rotatorPipe io.Writer
}

func (w *logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if w.rotatorPipe != nil {
		w.rotatorPipe.Write(p)
	}
	return len(p), nil
}

var (
	writer     = &logWriter{}
	backendLog = btclog.NewBackend(writer)
	logRotator *rotator.Rotator

	discLog = backendLog.Logger("DISC")
)

func init() {
	discovery.UseLogger(discLog)
}

// initLogRotator creates a rotating log file under logDir/logFilename and
// attaches it to the backend, so the named subsystem loggers begin writing
// to disk as well as to stdout.
func initLogRotator(logDir, logFilename string, maxLogFileSize, maxLogFiles int) error {
	logFile := filepath.Join(logDir, logFilename)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	r, err := rotator.New(logFile, int64(maxLogFileSize*1024), false, maxLogFiles)
	if err != nil {
		return fmt.Errorf("failed to create log rotator: %w", err)
	}

	pr, pw := io.Pipe()
	go r.Run(pr)

	writer.rotatorPipe = pw
	logRotator = r
	return nil
}

// setLogLevel sets the log level for every subsystem this daemon registers.
func setLogLevel(levelStr string) {
	level, _ := btclog.LevelFromString(levelStr)
	discLog.SetLevel(level)
}
