package server

import (
	"fmt"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/log"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "notice", "warning", "error"
}

// WebLogger implements log.Logger by forwarding to a server logger and
// copying each message to a render's console channel. Debug messages stay
// in the server log.
type WebLogger struct {
	base        log.Logger
	consoleChan chan<- ConsoleMessage
}

var _ log.Logger = (*WebLogger)(nil)

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(base log.Logger, consoleChan chan<- ConsoleMessage) *WebLogger {
	return &WebLogger{
		base:        base,
		consoleChan: consoleChan,
	}
}

// send delivers a message to the console without blocking; a full channel drops it
func (wl *WebLogger) send(level, message string) {
	if wl.consoleChan == nil {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{
		Message:   message,
		Timestamp: time.Now(),
		Level:     level,
	}:
	default:
	}
}

func (wl *WebLogger) Debug(v ...interface{}) {
	if wl.base != nil {
		wl.base.Debug(v...)
	}
}

func (wl *WebLogger) Debugf(format string, v ...interface{}) {
	if wl.base != nil {
		wl.base.Debugf(format, v...)
	}
}

func (wl *WebLogger) Info(v ...interface{}) {
	if wl.base != nil {
		wl.base.Info(v...)
	}
	wl.send("info", fmt.Sprint(v...))
}

func (wl *WebLogger) Infof(format string, v ...interface{}) {
	if wl.base != nil {
		wl.base.Infof(format, v...)
	}
	wl.send("info", fmt.Sprintf(format, v...))
}

func (wl *WebLogger) Notice(v ...interface{}) {
	if wl.base != nil {
		wl.base.Notice(v...)
	}
	wl.send("notice", fmt.Sprint(v...))
}

func (wl *WebLogger) Noticef(format string, v ...interface{}) {
	if wl.base != nil {
		wl.base.Noticef(format, v...)
	}
	wl.send("notice", fmt.Sprintf(format, v...))
}

func (wl *WebLogger) Warning(v ...interface{}) {
	if wl.base != nil {
		wl.base.Warning(v...)
	}
	wl.send("warning", fmt.Sprint(v...))
}

func (wl *WebLogger) Warningf(format string, v ...interface{}) {
	if wl.base != nil {
		wl.base.Warningf(format, v...)
	}
	wl.send("warning", fmt.Sprintf(format, v...))
}

func (wl *WebLogger) Error(v ...interface{}) {
	if wl.base != nil {
		wl.base.Error(v...)
	}
	wl.send("error", fmt.Sprint(v...))
}

func (wl *WebLogger) Errorf(format string, v ...interface{}) {
	if wl.base != nil {
		wl.base.Errorf(format, v...)
	}
	wl.send("error", fmt.Sprintf(format, v...))
}
