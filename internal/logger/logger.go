package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu  sync.Mutex
	log = newDiscard()
	out *os.File
)

func newDiscard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.WarnLevel)
	return l
}

// DefaultPath returns the debug log path for tool, honouring TXR_DEBUG_LOG.
func DefaultPath(tool string) string {
	if p := os.Getenv("TXR_DEBUG_LOG"); p != "" {
		return p
	}
	return filepath.Join(os.TempDir(), tool+"-debug.log")
}

// Init sends debug-level logs to the file at path. Until Init is called
// everything is discarded, since stderr belongs to the editor.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}
	if out != nil {
		out.Close()
	}
	out = f

	l := logrus.New()
	l.SetOutput(f)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	l.SetLevel(logrus.DebugLevel)
	log = l
	log.WithField("path", path).Debug("logger initialized")
	return nil
}

// Get returns the process logger.
func Get() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	return log
}

// Close flushes and closes the log file, reverting to discard.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		out.Close()
		out = nil
	}
	log = newDiscard()
}
