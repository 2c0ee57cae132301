package server

import (
	"testing"
	"time"
)

func TestWebLogger_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger(nil, messageChan)

	logger.Infof("Pass %d completed", 3)

	select {
	case msg := <-messageChan:
		if msg.Message != "Pass 3 completed" {
			t.Errorf("Expected message 'Pass 3 completed', got '%s'", msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	default:
		t.Error("Expected a console message")
	}
}

func TestWebLogger_Levels(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger(nil, messageChan)

	logger.Notice("notice")
	logger.Warningf("warning %s", "message")
	logger.Error("error")

	expected := []ConsoleMessage{
		{Message: "notice", Level: "notice"},
		{Message: "warning message", Level: "warning"},
		{Message: "error", Level: "error"},
	}
	for i, want := range expected {
		select {
		case msg := <-messageChan:
			if msg.Message != want.Message || msg.Level != want.Level {
				t.Errorf("Message %d: expected %s/%q, got %s/%q", i, want.Level, want.Message, msg.Level, msg.Message)
			}
		default:
			t.Fatalf("Missing message %d", i)
		}
	}
}

func TestWebLogger_DebugStaysOffConsole(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger(nil, messageChan)

	logger.Debugf("tile %d done", 7)
	logger.Debug("noise")

	if len(messageChan) != 0 {
		t.Errorf("Debug messages should not reach the console, got %d", len(messageChan))
	}
}

func TestWebLogger_ChannelFull(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := NewWebLogger(nil, messageChan)

	logger.Info("Message 1")
	// These must not block even though the channel is full
	logger.Info("Message 2")
	logger.Info("Message 3")

	msg := <-messageChan
	if msg.Message != "Message 1" {
		t.Errorf("Expected the first message to be kept, got '%s'", msg.Message)
	}
}

func TestWebLogger_NilChannel(t *testing.T) {
	logger := NewWebLogger(nil, nil)

	// This should not panic
	logger.Info("Test message with nil channel")
}
