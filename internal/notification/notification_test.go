package notification

import (
	"bytes"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dooshek/heartbeat/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPlatform struct {
	titles, messages []string
	err              error
}

func (p *recordingPlatform) send(title, message string) error {
	p.titles = append(p.titles, title)
	p.messages = append(p.messages, message)
	return p.err
}

func TestBaseNotifierMessages(t *testing.T) {
	p := &recordingPlatform{}
	n := &baseNotifier{platform: p}

	assert.NoError(t, n.NotifyModeActivated())
	assert.NoError(t, n.NotifyModeExited())
	assert.NoError(t, n.NotifyNoMicrophone())

	assert.Equal(t, []string{appTitle, appTitle, appTitle}, p.titles)
	assert.Equal(t, "Biofeedback mode activated", p.messages[0])
	assert.Equal(t, "Biofeedback mode exited", p.messages[1])
}

func TestBaseNotifierPropagatesErrors(t *testing.T) {
	n := &baseNotifier{platform: &recordingPlatform{err: errors.New("no notify-send")}}
	assert.Error(t, n.Notify("t", "m"))
}

func TestSilentNotifier(t *testing.T) {
	n := NewSilent()
	assert.NoError(t, n.NotifyModeActivated())
	assert.NoError(t, n.Notify("t", "m"))
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLinuxNotifierLogsCommandFailure(t *testing.T) {
	var out lockedBuffer
	logger.SetOutput(&out)
	defer logger.SetOutput(os.Stdout)

	calls := make(chan []string, 1)
	n := &linuxNotifier{run: func(name string, args ...string) error {
		calls <- append([]string{name}, args...)
		return errors.New("notify-send not found")
	}}
	require.NoError(t, n.send("Heartbeat", "hello"))

	select {
	case got := <-calls:
		assert.Equal(t, []string{"notify-send", "Heartbeat", "hello"}, got)
	case <-time.After(time.Second):
		t.Fatal("notify-send was not run")
	}

	assert.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("notify-send not found"))
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "Failed to send notification")
}
