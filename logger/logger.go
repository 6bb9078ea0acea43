package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	WarnLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

// InitLoggers sets up the shared loggers. Must be called before any other
// package logs; every init path in this service calls it first.
func InitLoggers() {
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	InfoLogger = newLogger(logDir+"/info.log", logrus.InfoLevel)
	WarnLogger = newLogger(logDir+"/warn.log", logrus.WarnLevel)
	ErrorLogger = newLogger(logDir+"/error.log", logrus.ErrorLevel)
}

func newLogger(filename string, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	rotated := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	l.SetOutput(io.MultiWriter(os.Stdout, rotated))
	return l
}
