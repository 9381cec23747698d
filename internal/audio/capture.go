package audio

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dooshek/heartbeat/internal/logger"
	"github.com/gen2brain/malgo"
)

const channels = 1

// Capture streams the microphone into a ring buffer through miniaudio.
type Capture struct {
	cfg  CaptureConfig
	ring *Ring

	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	scratch []float32
}

func NewCapture(cfg CaptureConfig) *Capture {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultCaptureConfig().SampleRate
	}
	if cfg.BufferSeconds <= 0 {
		cfg.BufferSeconds = DefaultCaptureConfig().BufferSeconds
	}
	return &Capture{
		cfg:  cfg,
		ring: NewRing(int(float64(cfg.SampleRate) * cfg.BufferSeconds)),
	}
}

func (c *Capture) SampleRate() int {
	return c.cfg.SampleRate
}

// Start opens the configured device, or the default one, and begins
// filling the ring buffer. It returns ErrNoDevice when nothing can record.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		return nil
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debugf("miniaudio: %s", strings.TrimSpace(message))
	})
	if err != nil {
		return fmt.Errorf("failed to initialize audio context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(c.cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	info, err := findDevice(ctx, c.cfg.Device)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return err
	}
	deviceConfig.Capture.DeviceID = info.ID.Pointer()

	c.ring.Reset()
	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(outputBuffer, inputBuffer []byte, frameCount uint32) {
			c.scratch = DecodeS16LE(c.scratch, inputBuffer)
			c.ring.Write(c.scratch)
		},
	})
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	c.ctx = ctx
	c.device = device
	logger.Infof("🎙️  Capturing from %q at %d Hz", info.Name(), c.cfg.SampleRate)
	return nil
}

// Stop releases the device. It is safe to call when not capturing.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return nil
	}
	var firstErr error
	if err := c.device.Stop(); err != nil {
		firstErr = fmt.Errorf("failed to stop capture device: %w", err)
	}
	c.device.Uninit()
	c.device = nil

	if err := c.ctx.Uninit(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to release audio context: %w", err)
	}
	c.ctx.Free()
	c.ctx = nil

	logger.Debug("Capture stopped")
	return firstErr
}

func (c *Capture) Window(dst []float32) int {
	return c.ring.Window(dst)
}

// Device describes one capture device.
type Device struct {
	Name      string
	IsDefault bool
}

// ListDevices enumerates capture devices.
func ListDevices() ([]Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	defer func() {
		ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to list capture devices: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, Device{Name: info.Name(), IsDefault: info.IsDefault != 0})
	}
	return devices, nil
}

func findDevice(ctx *malgo.AllocatedContext, name string) (malgo.DeviceInfo, error) {
	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return malgo.DeviceInfo{}, fmt.Errorf("failed to list capture devices: %w", err)
	}
	idx, err := pickDevice(namesOf(infos), defaultsOf(infos), name)
	if err != nil {
		return malgo.DeviceInfo{}, err
	}
	return infos[idx], nil
}

func namesOf(infos []malgo.DeviceInfo) []string {
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names
}

func defaultsOf(infos []malgo.DeviceInfo) []bool {
	defaults := make([]bool, len(infos))
	for i, info := range infos {
		defaults[i] = info.IsDefault != 0
	}
	return defaults
}

// pickDevice chooses by exact name, then by case-insensitive substring, then
// falls back to the system default or the first device when name is empty.
func pickDevice(names []string, defaults []bool, name string) (int, error) {
	if len(names) == 0 {
		return 0, ErrNoDevice
	}
	if name == "" {
		for i, d := range defaults {
			if d {
				return i, nil
			}
		}
		return 0, nil
	}
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	lower := strings.ToLower(name)
	for i, n := range names {
		if strings.Contains(strings.ToLower(n), lower) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("capture device %q not found", name)
}
