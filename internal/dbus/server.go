package dbus

import (
	"fmt"
	"sync"
	"time"

	"github.com/dooshek/heartbeat/internal/logger"
	"github.com/dooshek/heartbeat/internal/loudness"
	"github.com/dooshek/heartbeat/internal/mode"
	"github.com/dooshek/heartbeat/internal/presentation"
	"github.com/dooshek/heartbeat/internal/types"
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	dbusServiceName = "com.dooshek.heartbeat"
	dbusObjectPath  = "/com/dooshek/heartbeat/Meter"
	dbusInterface   = "com.dooshek.heartbeat.Meter"
)

type emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// Server exposes the meter, the heart and the mode on the session bus. It is
// also a presentation sink: the smoothed level goes out as LevelChanged.
type Server struct {
	conn *dbus.Conn
	emit emitter

	meter *loudness.Meter
	heart *presentation.HeartController
	modes *mode.Manager

	throttle  time.Duration
	now       func() time.Time
	lastLevel time.Time

	unsubscribe func()
	mu          sync.Mutex
}

// NewServer wires the server to the components it controls. Nothing is sent
// until Start connects to the bus.
func NewServer(cfg types.DBusConfig, meter *loudness.Meter, heart *presentation.HeartController, modes *mode.Manager) *Server {
	s := &Server{
		meter:    meter,
		heart:    heart,
		modes:    modes,
		throttle: time.Duration(cfg.LevelThrottleMs) * time.Millisecond,
		now:      time.Now,
	}

	s.unsubscribe = meter.Subscribe(s.onSpike)
	heart.OnBandChange(s.onBandChange)
	modes.OnChange(s.onModeChange)
	return s
}

// Start starts the D-Bus server
func (s *Server) Start() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	reply, err := conn.RequestName(dbusServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return fmt.Errorf("name already taken")
	}

	if err := conn.Export(s, dbusObjectPath, dbusInterface); err != nil {
		conn.Close()
		return fmt.Errorf("failed to export object: %w", err)
	}

	err = conn.Export(introspect.NewIntrospectable(introspectNode()), dbusObjectPath, "org.freedesktop.DBus.Introspectable")
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.emit = conn
	s.mu.Unlock()

	logger.Infof("🔌 D-Bus service started: %s", dbusServiceName)
	return nil
}

// Stop stops the D-Bus server
func (s *Server) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.emit = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	logger.Infof("🔌 D-Bus service stopped")
}

// GetLevel returns the meter's raw, normalized and smoothed level (D-Bus method)
func (s *Server) GetLevel() (float64, float64, float64, *dbus.Error) {
	st := s.meter.State()
	return st.RawRMS, st.NormalizedLevel, st.SmoothedLevel, nil
}

// GetBand returns the heart's current band (D-Bus method)
func (s *Server) GetBand() (string, string, string, *dbus.Error) {
	band := s.heart.Snapshot().Band
	return string(band.Name), band.Label, band.Color.Hex(), nil
}

// Configure replaces the meter settings. The cooldown is in seconds (D-Bus method)
func (s *Server) Configure(sensitivity, minThreshold, maxThreshold, smoothing, multiplier, cooldownSeconds float64) *dbus.Error {
	cfg := configFromArgs(sensitivity, minThreshold, maxThreshold, smoothing, multiplier, cooldownSeconds)
	logger.Debugf("D-Bus: Configure called: %+v", cfg)

	if err := s.meter.Configure(cfg); err != nil {
		logger.Warnf("D-Bus: Rejected configuration: %v", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

// ActivateMode enters biofeedback mode (D-Bus method)
func (s *Server) ActivateMode() *dbus.Error {
	logger.Debugf("D-Bus: ActivateMode called")
	s.modes.Activate()
	return nil
}

// ExitMode leaves biofeedback mode (D-Bus method)
func (s *Server) ExitMode() *dbus.Error {
	logger.Debugf("D-Bus: ExitMode called")
	s.modes.Exit()
	return nil
}

// GetMode reports whether biofeedback mode is active (D-Bus method)
func (s *Server) GetMode() (bool, *dbus.Error) {
	return s.modes.Active(), nil
}

// ResetHeart puts the heart back to rest (D-Bus method)
func (s *Server) ResetHeart() *dbus.Error {
	logger.Debugf("D-Bus: ResetHeart called")
	s.heart.Reset()
	return nil
}

// ApplyLoudness emits LevelChanged at most once per throttle interval.
func (s *Server) ApplyLoudness(level float64) {
	s.mu.Lock()
	now := s.now()
	if !s.lastLevel.IsZero() && now.Sub(s.lastLevel) < s.throttle {
		s.mu.Unlock()
		return
	}
	s.lastLevel = now
	s.mu.Unlock()

	s.emitSignal("LevelChanged", level)
}

func (s *Server) onSpike() {
	at, _ := s.meter.LastSpike()
	s.emitSignal("Spike", at.Seconds())
}

func (s *Server) onBandChange(_, next presentation.Band) {
	s.emitSignal("BandChanged", string(next.Name), next.Label, next.Color.Hex())
}

func (s *Server) onModeChange(active bool) {
	s.emitSignal("ModeChanged", active)
}

func configFromArgs(sensitivity, minThreshold, maxThreshold, smoothing, multiplier, cooldownSeconds float64) loudness.Config {
	return loudness.Config{
		Sensitivity:     sensitivity,
		MinThreshold:    minThreshold,
		MaxThreshold:    maxThreshold,
		Smoothing:       smoothing,
		SpikeMultiplier: multiplier,
		SpikeCooldown:   time.Duration(cooldownSeconds * float64(time.Second)),
	}
}

// emitSignal emits a D-Bus signal
func (s *Server) emitSignal(name string, args ...interface{}) {
	s.mu.Lock()
	emit := s.emit
	s.mu.Unlock()

	if emit == nil {
		return
	}

	err := emit.Emit(dbus.ObjectPath(dbusObjectPath), dbusInterface+"."+name, args...)
	if err != nil {
		logger.Errorf("D-Bus: Failed to emit signal %s", err, name)
	}
}

func introspectNode() *introspect.Node {
	out := func(name, typ string) introspect.Arg {
		return introspect.Arg{Name: name, Type: typ, Direction: "out"}
	}
	in := func(name string) introspect.Arg {
		return introspect.Arg{Name: name, Type: "d", Direction: "in"}
	}

	return &introspect.Node{
		Name: dbusObjectPath,
		Interfaces: []introspect.Interface{{
			Name: dbusInterface,
			Methods: []introspect.Method{
				{
					Name: "GetLevel",
					Args: []introspect.Arg{out("raw", "d"), out("normalized", "d"), out("smoothed", "d")},
				},
				{
					Name: "GetBand",
					Args: []introspect.Arg{out("name", "s"), out("label", "s"), out("color", "s")},
				},
				{
					Name: "Configure",
					Args: []introspect.Arg{
						in("sensitivity"), in("min_threshold"), in("max_threshold"),
						in("smoothing"), in("spike_multiplier"), in("spike_cooldown_seconds"),
					},
				},
				{Name: "ActivateMode"},
				{Name: "ExitMode"},
				{
					Name: "GetMode",
					Args: []introspect.Arg{out("active", "b")},
				},
				{Name: "ResetHeart"},
			},
			Signals: []introspect.Signal{
				{Name: "Spike", Args: []introspect.Arg{{Name: "at", Type: "d"}}},
				{
					Name: "BandChanged",
					Args: []introspect.Arg{{Name: "name", Type: "s"}, {Name: "label", Type: "s"}, {Name: "color", Type: "s"}},
				},
				{Name: "LevelChanged", Args: []introspect.Arg{{Name: "level", Type: "d"}}},
				{Name: "ModeChanged", Args: []introspect.Arg{{Name: "active", Type: "b"}}},
			},
		}, introspect.IntrospectData},
	}
}
