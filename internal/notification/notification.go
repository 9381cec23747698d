package notification

import (
	"runtime"

	"github.com/dooshek/heartbeat/internal/logger"
)

const appTitle = "Heartbeat"

// Notifier defines the interface for desktop notifications
type Notifier interface {
	NotifyModeActivated() error
	NotifyModeExited() error
	NotifyNoMicrophone() error
	Notify(title, message string) error
}

// SilentNotifier is a no-op implementation for daemon and TUI mode
type SilentNotifier struct{}

func NewSilent() Notifier {
	return &SilentNotifier{}
}

func (s *SilentNotifier) NotifyModeActivated() error         { return nil }
func (s *SilentNotifier) NotifyModeExited() error            { return nil }
func (s *SilentNotifier) NotifyNoMicrophone() error          { return nil }
func (s *SilentNotifier) Notify(title, message string) error { return nil }

type baseNotifier struct {
	platform platformNotifier
}

type platformNotifier interface {
	send(title, message string) error
}

// New creates a new platform-specific notification service
func New() Notifier {
	logger.Debug("Initializing notification system")
	var platform platformNotifier
	switch runtime.GOOS {
	case "darwin":
		logger.Debug("Using Darwin (macOS) notifier")
		platform = newDarwinNotifier()
	default:
		logger.Debug("Using Linux notifier")
		platform = newLinuxNotifier()
	}
	return &baseNotifier{platform: platform}
}

func (n *baseNotifier) NotifyModeActivated() error {
	logger.Debug("Sending biofeedback mode activated notification")
	return n.Notify(appTitle, "Biofeedback mode activated")
}

func (n *baseNotifier) NotifyModeExited() error {
	logger.Debug("Sending biofeedback mode exited notification")
	return n.Notify(appTitle, "Biofeedback mode exited")
}

func (n *baseNotifier) NotifyNoMicrophone() error {
	return n.Notify(appTitle, "No microphone found, showing silence")
}

func (n *baseNotifier) Notify(title, message string) error {
	return n.platform.send(title, message)
}
