package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	permission = 0664
)

// LogBuild collects options for Make
type LogBuild struct {
	writer io.Writer
	path   string
	level  string
}

// LogData is a built logger and the file it writes to, if any
type LogData struct {
	LogFile *os.File
	Logger  zerolog.Logger
}

// New starts a builder that logs to stdout at info level
func New() *LogBuild {
	return &LogBuild{}
}

// FromPath appends to the file at path instead of stdout
func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

// FromBuffer writes to w instead of stdout
func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

// WithLevel sets the minimum level by name; unknown names fall back to info
func (build *LogBuild) WithLevel(level string) *LogBuild {
	build.level = level
	return build
}

// Make opens the output and builds a timestamped logger
func (build *LogBuild) Make() (logData *LogData, err error) {
	logData = new(LogData)
	writer := io.Writer(os.Stdout)
	if build.writer != nil {
		writer = build.writer
	}
	if build.path != "" {
		logData.LogFile, err = os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		writer = zerolog.SyncWriter(logData.LogFile)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(build.level))
	if err != nil || build.level == "" {
		level = zerolog.InfoLevel
	}
	logData.Logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return logData, nil
}

// Close releases the log file, if one was opened
func (logData *LogData) Close() error {
	if logData.LogFile == nil {
		return nil
	}
	return logData.LogFile.Close()
}
