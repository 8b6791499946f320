package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const filePrefix = "gestiontextil_"

var (
	logMutex  sync.RWMutex
	base      = NewWithWriter(consoleWriter())
	logFile   *os.File
	logPath   string
	crashPath string
)

// Options configures Initialize
type Options struct {
	Dir      string
	KeepDays int
	Debug    bool
}

func consoleWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
}

// Initialize opens today's log file and routes every Write* call to both the
// file (JSON lines) and the console.
func Initialize(opts Options) error {
	dir := opts.Dir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "gestiontextil_logs")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	keep := opts.KeepDays
	if keep <= 0 {
		keep = 10
	}
	cleanupOldLogs(dir, keep)

	day := time.Now().Format("2006-01-02")
	path := filepath.Join(dir, fmt.Sprintf("%s%s.log", filePrefix, day))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	logMutex.Lock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	logPath = path
	crashPath = filepath.Join(dir, fmt.Sprintf("%scrash_%s.log", filePrefix, day))
	base = NewWithWriter(zerolog.MultiLevelWriter(f, consoleWriter())).Level(level)
	logMutex.Unlock()

	WriteInfo("Application", "Starting Gestión Textil")
	WriteInfo("Application", fmt.Sprintf("Log file: %s", path))
	WriteInfo("Application", fmt.Sprintf("OS: %s, Arch: %s", runtime.GOOS, runtime.GOARCH))
	return nil
}

// Close closes the log file and falls back to console output
func Close() {
	WriteInfo("Application", "Shutting down Gestión Textil")

	logMutex.Lock()
	defer logMutex.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	base = NewWithWriter(consoleWriter())
}

// SetDebug toggles debug-level output without reopening files
func SetDebug(enabled bool) {
	logMutex.Lock()
	defer logMutex.Unlock()
	if enabled {
		base = base.Level(zerolog.DebugLevel)
	} else {
		base = base.Level(zerolog.InfoLevel)
	}
}

// Base returns the process-wide logger
func Base() zerolog.Logger {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return base
}

// WriteInfo writes an info message to the log
func WriteInfo(module, message string) {
	write(zerolog.InfoLevel, module, message)
}

// WriteError writes an error message to the log
func WriteError(module, message string) {
	write(zerolog.ErrorLevel, module, message)
}

// WriteWarning writes a warning message to the log
func WriteWarning(module, message string) {
	write(zerolog.WarnLevel, module, message)
}

// WriteDebug writes a debug message to the log
func WriteDebug(module, message string) {
	write(zerolog.DebugLevel, module, message)
}

func write(level zerolog.Level, module, message string) {
	l := Base()
	l.WithLevel(level).Str("module", module).Msg(message)
}

// WriteCrash writes crash information to the main log and the crash log
func WriteCrash(module string, err interface{}, stackTrace []byte) {
	l := Base()
	l.Error().Str("module", module).Str("crash", fmt.Sprint(err)).Msg("panic recovered")

	logMutex.RLock()
	path := crashPath
	logMutex.RUnlock()
	if path == "" {
		return
	}

	f, ferr := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if ferr != nil {
		return
	}
	defer f.Close()

	crash := NewWithWriter(f)
	crash.Error().
		Str("module", module).
		Str("error", fmt.Sprint(err)).
		Str("stack", string(stackTrace)).
		Msg("crash report")
}

// RecoverPanic recovers from a panic and logs it. Use with defer.
func RecoverPanic(module string) {
	if r := recover(); r != nil {
		stackBuf := make([]byte, 8192)
		n := runtime.Stack(stackBuf, false)
		WriteCrash(module, r, stackBuf[:n])
	}
}

// GetLogPath returns the current log file path
func GetLogPath() string {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return logPath
}

// GetCrashPath returns the current crash log file path
func GetCrashPath() string {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return crashPath
}

// cleanupOldLogs removes our log files older than keepDays
func cleanupOldLogs(dir string, keepDays int) {
	cutoff := time.Now().AddDate(0, 0, -keepDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), filePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
}
