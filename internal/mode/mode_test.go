package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingNotifier struct {
	activated int
	exited    int
}

func (n *countingNotifier) NotifyModeActivated() error         { n.activated++; return nil }
func (n *countingNotifier) NotifyModeExited() error            { n.exited++; return nil }
func (n *countingNotifier) NotifyNoMicrophone() error          { return nil }
func (n *countingNotifier) Notify(title, message string) error { return nil }

func newTestLayout() (Layout, []*Element) {
	activate := NewElement("activate", false)
	exit := NewElement("exit", true)
	overlay := NewElement("overlay", true)
	anatomy := NewElement("anatomy", false)
	quiz := NewElement("quiz", false)
	return Layout{
		ActivateButton: activate,
		ExitButton:     exit,
		Overlay:        overlay,
		Modules:        []Toggleable{anatomy, quiz},
	}, []*Element{activate, exit, overlay, anatomy, quiz}
}

func visibility(elems []*Element) []bool {
	out := make([]bool, len(elems))
	for i, e := range elems {
		out[i] = e.Visible()
	}
	return out
}

func TestNewManagerAppliesInactiveLayout(t *testing.T) {
	layout, elems := newTestLayout()
	m := NewManager(layout, nil)

	assert.False(t, m.Active())
	// activate, exit, overlay, modules...
	assert.Equal(t, []bool{true, false, false, true, true}, visibility(elems))
}

func TestActivateAndExit(t *testing.T) {
	layout, elems := newTestLayout()
	n := &countingNotifier{}
	m := NewManager(layout, n)

	var changes []bool
	m.OnChange(func(active bool) { changes = append(changes, active) })

	assert.True(t, m.Activate())
	assert.True(t, m.Active())
	assert.Equal(t, []bool{false, true, true, false, false}, visibility(elems))

	assert.False(t, m.Activate(), "second activation is a no-op")

	assert.True(t, m.Exit())
	assert.False(t, m.Exit())
	assert.Equal(t, []bool{true, false, false, true, true}, visibility(elems))

	assert.Equal(t, []bool{true, false}, changes)
	assert.Equal(t, 1, n.activated)
	assert.Equal(t, 1, n.exited)
}

func TestToggle(t *testing.T) {
	layout, _ := newTestLayout()
	m := NewManager(layout, nil)

	assert.True(t, m.Toggle())
	assert.False(t, m.Toggle())
	assert.False(t, m.Active())
}

func TestNilElementsAreSkipped(t *testing.T) {
	m := NewManager(Layout{}, nil)
	assert.True(t, m.Activate())
}
