// Package mode switches the application in and out of biofeedback mode.
package mode

import (
	"sync"

	"github.com/dooshek/heartbeat/internal/logger"
	"github.com/dooshek/heartbeat/internal/notification"
)

// Toggleable is any UI element the mode manager can show or hide.
type Toggleable interface {
	SetVisible(visible bool)
}

// Element is a named visibility flag, usable when no richer UI object exists.
type Element struct {
	mu      sync.Mutex
	Name    string
	visible bool
}

func NewElement(name string, visible bool) *Element {
	return &Element{Name: name, visible: visible}
}

func (e *Element) SetVisible(visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visible = visible
}

func (e *Element) Visible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visible
}

// Layout is the set of elements that change with the mode. Modules are shown
// outside biofeedback mode and hidden inside it; Overlay is the opposite.
type Layout struct {
	ActivateButton Toggleable
	ExitButton     Toggleable
	Overlay        Toggleable
	Modules        []Toggleable
}

// Manager owns the biofeedback mode flag. It is safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	layout    Layout
	notifier  notification.Notifier
	active    bool
	listeners []func(active bool)
}

// NewManager starts outside biofeedback mode and applies that layout.
func NewManager(layout Layout, notifier notification.Notifier) *Manager {
	if notifier == nil {
		notifier = notification.NewSilent()
	}
	m := &Manager{layout: layout, notifier: notifier}
	m.apply(false)
	return m
}

// OnChange registers fn to run after every mode transition.
func (m *Manager) OnChange(fn func(active bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Activate enters biofeedback mode. It reports whether the mode changed.
func (m *Manager) Activate() bool {
	if !m.set(true) {
		return false
	}
	logger.Info("💓 Biofeedback mode activated")
	if err := m.notifier.NotifyModeActivated(); err != nil {
		logger.Warnf("Could not send notification: %v", err)
	}
	return true
}

// Exit leaves biofeedback mode. It reports whether the mode changed.
func (m *Manager) Exit() bool {
	if !m.set(false) {
		return false
	}
	logger.Info("Biofeedback mode exited")
	if err := m.notifier.NotifyModeExited(); err != nil {
		logger.Warnf("Could not send notification: %v", err)
	}
	return true
}

// Toggle flips the mode and returns the new state.
func (m *Manager) Toggle() bool {
	if m.Active() {
		m.Exit()
		return false
	}
	m.Activate()
	return true
}

func (m *Manager) set(active bool) bool {
	m.mu.Lock()
	if m.active == active {
		m.mu.Unlock()
		return false
	}
	m.active = active
	m.apply(active)
	listeners := append([]func(bool){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(active)
	}
	return true
}

func (m *Manager) apply(active bool) {
	for _, module := range m.layout.Modules {
		setVisible(module, !active)
	}
	setVisible(m.layout.Overlay, active)
	setVisible(m.layout.ActivateButton, !active)
	setVisible(m.layout.ExitButton, active)
}

func setVisible(t Toggleable, visible bool) {
	if t != nil {
		t.SetVisible(visible)
	}
}
