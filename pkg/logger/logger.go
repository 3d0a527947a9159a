// Package logger configures the SDK-wide logrus logger. Packages log through
// the helpers here so host applications can redirect or silence everything
// with one Init call.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the shared instance. It defaults to the logrus standard logger
// so advisories are visible even when Init is never called.
var Logger = logrus.StandardLogger()

// Config controls level, format, and optional rotated file output.
type Config struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	OutputFile string `yaml:"output_file"` // optional; empty means console only
	MaxSize    int    `yaml:"max_size"`    // max file size in MB before rotation
	MaxBackups int    `yaml:"max_backups"` // rotated files to keep
	MaxAge     int    `yaml:"max_age"`     // days to keep rotated files
	Compress   bool   `yaml:"compress"`    // gzip rotated files
}

// Init builds a fresh logger from config and installs it as the shared
// instance. Output goes to stdout, plus a size-rotated file when OutputFile
// is set.
func Init(config Config) error {
	log := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "06-01-02 15:04:05",
		ForceColors:     true,
	})

	writers := []io.Writer{os.Stdout}
	if config.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0755); err != nil {
			return err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   config.OutputFile,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		})
	}
	log.SetOutput(io.MultiWriter(writers...))

	Logger = log
	return nil
}

// InitDefault installs an info-level console logger.
func InitDefault() error {
	return Init(Config{Level: "info"})
}

func Debug(args ...interface{}) { Logger.Debug(args...) }

func Debugf(format string, args ...interface{}) { Logger.Debugf(format, args...) }

func Info(args ...interface{}) { Logger.Info(args...) }

func Infof(format string, args ...interface{}) { Logger.Infof(format, args...) }

func Warn(args ...interface{}) { Logger.Warn(args...) }

func Warnf(format string, args ...interface{}) { Logger.Warnf(format, args...) }

func Error(args ...interface{}) { Logger.Error(args...) }

func Errorf(format string, args ...interface{}) { Logger.Errorf(format, args...) }

// WithField adds one field to a log entry.
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithFields adds several fields to a log entry.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}
