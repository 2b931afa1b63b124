package apikit

import (
	"time"

	"go.uber.org/zap"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	Level   Level
	Message string
	Time    time.Time
}

// Notifier receives display-ready text for the user-facing notification
// surface (a toast, a status bar, a log line).
type Notifier interface {
	Notify(level Level, message string)
}

// LogNotifier writes notifications to a zap logger. It is the default
// surface for headless consumers.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) Notify(level Level, message string) {
	logger := n.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	switch level {
	case LevelError:
		logger.Error(message)
	case LevelWarning:
		logger.Warn(message)
	default:
		logger.Info(message)
	}
}

// ChannelNotifier buffers notifications for a UI loop to drain. When the
// buffer is full the oldest entry is dropped rather than blocking the
// request path.
type ChannelNotifier struct {
	ch chan Notification
}

func NewChannelNotifier(size int) *ChannelNotifier {
	if size <= 0 {
		size = 16
	}
	return &ChannelNotifier{ch: make(chan Notification, size)}
}

func (n *ChannelNotifier) Notify(level Level, message string) {
	note := Notification{Level: level, Message: message, Time: time.Now()}
	for {
		select {
		case n.ch <- note:
			return
		default:
			select {
			case <-n.ch:
			default:
			}
		}
	}
}

func (n *ChannelNotifier) C() <-chan Notification {
	return n.ch
}
