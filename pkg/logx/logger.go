// SPDX-License-Identifier: Apache-2.0

package logx

import (
	"context"
	"io"
	"log"
	"os"
	"path"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// global logger instances
var logger zerolog.Logger
var nolog = zerolog.Nop()

var startTime time.Time
var pid = os.Getpid()

// console is where console logging goes; stdout is reserved for the task result envelope.
var console io.Writer = os.Stderr

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	// Level is the log level to use (e.g., "info", "debug").
	Level string `yaml:"level" json:"level"`
	// ConsoleLogging enables logging to the console (stderr).
	ConsoleLogging bool `yaml:"consoleLogging" json:"consoleLogging"`
	// FileLogging enables logging to a file.
	FileLogging bool `yaml:"fileLogging" json:"fileLogging"`
	// Directory specifies the directory for log files (used if FileLogging is enabled).
	Directory string `yaml:"directory" json:"directory"`
	// Filename is the name of the log file.
	Filename string `yaml:"filename" json:"filename"`
	// MaxSize is the maximum size (in MB) of a log file before it is rolled.
	MaxSize int `yaml:"maxSize" json:"maxSize"`
	// MaxBackups is the maximum number of rolled log files to keep.
	MaxBackups int `yaml:"maxBackups" json:"maxBackups"`
	// MaxAge is the maximum age (in days) to keep a log file.
	MaxAge int `yaml:"maxAge" json:"maxAge"`
	// Compress enables compression of rolled log files.
	Compress bool `yaml:"compress" json:"compress"`
}

func init() {
	StartTimer()
	err := WithConfig(&LoggingConfig{
		Level:          "info",
		ConsoleLogging: true,
	}, nil)
	if err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
}

// WithConfig (re)initializes the global logger.
// Extra fields are attached to every log line.
func WithConfig(cfg *LoggingConfig, fields map[string]string) error {
	level := cfg.Level
	if level == "" {
		level = zerolog.InfoLevel.String()
	}

	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(l)

	var writers []io.Writer
	if cfg.ConsoleLogging {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
		})
	}

	if cfg.FileLogging {
		logFile, err := newRollingFile(cfg)
		if err != nil {
			return err
		}
		writers = append(writers, logFile)
	}

	if len(writers) == 0 {
		logger = nolog
		return nil
	}

	mw := zerolog.MultiLevelWriter(writers...)
	c := zerolog.New(mw).
		With().
		Timestamp().
		Int("pid", pid)

	for k, v := range fields {
		c = c.Str(k, v)
	}

	logger = c.Logger()
	return nil
}

func As() *zerolog.Logger {
	return &logger
}

// WithContext returns a child logger carrying the traceId of the context (if any) and the given fields.
// Unlike WithConfig, it does not replace the global logger.
func WithContext(ctx context.Context, fields map[string]string) *zerolog.Logger {
	c := logger.With()

	if traceId, ok := ctx.Value(TraceIdKey).(string); ok && traceId != "" {
		c = c.Str(string(TraceIdKey), traceId)
	}

	for k, v := range fields {
		c = c.Str(k, v)
	}

	l := c.Logger()
	return &l
}

func Nop() *zerolog.Logger {
	return &nolog
}

func StartTimer() {
	startTime = time.Now()
}

func ExecutionTime() string {
	return time.Since(startTime).Round(time.Millisecond).String()
}

func GetPid() int {
	return pid
}

func newRollingFile(cfg *LoggingConfig) (io.Writer, error) {
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, err
	}

	return &lumberjack.Logger{
		Filename:   path.Join(cfg.Directory, cfg.Filename),
		MaxBackups: cfg.MaxBackups, // files
		MaxSize:    cfg.MaxSize,    // megabytes
		MaxAge:     cfg.MaxAge,     // days
		Compress:   cfg.Compress,
	}, nil
}
