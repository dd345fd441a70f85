package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

var (
	InfoLog  *log.Logger
	ErrorLog *log.Logger
	WarnLog  *log.Logger
	DebugLog *log.Logger
	logFile  *os.File
	level    = INFO
	mu       sync.Mutex
)

const (
	INFO = iota
	DEBUG
)

const flags = log.Ldate | log.Ltime | log.Lshortfile

// ParseLevel maps a LOG_LEVEL value to a logger level. Anything but "debug" is INFO.
func ParseLevel(s string) int {
	if strings.EqualFold(strings.TrimSpace(s), "debug") {
		return DEBUG
	}
	return INFO
}

// InitLogger initializes the logger with console output and, when filename
// is not empty, an appended log file.
func InitLogger(filename string, lvl int) error {
	mu.Lock()
	defer mu.Unlock()

	var out io.Writer = os.Stdout
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		logFile = f
		out = io.MultiWriter(os.Stdout, logFile)
	}

	setOutput(out, out)
	level = lvl
	return nil
}

// SetOutput redirects every level to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	setOutput(w, w)
}

func setOutput(out, errOut io.Writer) {
	InfoLog = log.New(out, "INFO: ", flags)
	ErrorLog = log.New(errOut, "ERROR: ", flags)
	WarnLog = log.New(out, "WARN: ", flags)
	DebugLog = log.New(out, "DEBUG: ", flags)
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func Init() {
	mu.Lock()
	defer mu.Unlock()
	if InfoLog == nil {
		setOutput(os.Stdout, os.Stderr)
	}
}

// calldepth 3 points Lshortfile at the caller of Info/Warn/Error, not this file.
const calldepth = 3

func output(l **log.Logger, format string, v ...interface{}) {
	if *l == nil {
		Init()
	}
	(*l).Output(calldepth, sprintf(format, v...))
}

func sprintf(format string, v ...interface{}) string {
	if len(v) == 0 {
		return format
	}
	return fmt.Sprintf(format, v...)
}

func Info(format string, v ...interface{}) {
	output(&InfoLog, format, v...)
}

func Infof(format string, v ...interface{}) {
	output(&InfoLog, format, v...)
}

func Error(format string, v ...interface{}) {
	output(&ErrorLog, format, v...)
}

func Errorf(format string, v ...interface{}) {
	output(&ErrorLog, format, v...)
}

func Warn(format string, v ...interface{}) {
	output(&WarnLog, format, v...)
}

func Warnf(format string, v ...interface{}) {
	output(&WarnLog, format, v...)
}

// Debugf logs only when the level is DEBUG.
func Debugf(format string, v ...interface{}) {
	if level < DEBUG {
		return
	}
	output(&DebugLog, format, v...)
}
