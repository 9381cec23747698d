package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dooshek/heartbeat/internal/app"
	"github.com/dooshek/heartbeat/internal/audio"
	"github.com/dooshek/heartbeat/internal/cli"
	"github.com/dooshek/heartbeat/internal/config"
	"github.com/dooshek/heartbeat/internal/fileops"
	"github.com/dooshek/heartbeat/internal/logger"
	"github.com/dooshek/heartbeat/internal/loudness"
	"github.com/dooshek/heartbeat/internal/notification"
	"github.com/dooshek/heartbeat/internal/state"
	"github.com/dooshek/heartbeat/internal/tui"
	"github.com/dooshek/heartbeat/internal/types"
	"github.com/fatih/color"
)

var (
	version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Version     bool   `short:"v" help:"Show version information"`
	LogLevel    string `help:"Set log level (debug|info|warn|error)" default:"info" enum:"debug,info,warn,error"`
	LogFilename string `help:"Log to file instead of stdout" type:"path"`
	ConfigFile  string `name:"config" short:"c" type:"path" help:"Path to YAML config file (default ~/.config/heartbeat/heartbeat.yaml)"`

	Run       RunCmd       `cmd:"" default:"withargs" help:"Listen to the microphone and drive the meter"`
	Tui       TuiCmd       `cmd:"" help:"Run the meter with the terminal UI"`
	Calibrate CalibrateCmd `cmd:"" help:"Measure the room and the microphone and suggest thresholds"`
	Devices   DevicesCmd   `cmd:"" help:"List capture devices"`
	Config    ConfigCmd    `cmd:"" help:"Show or create the config file"`
}

// SourceFlags override the capture section of the config file
type SourceFlags struct {
	Device string `help:"Capture device name (substring match)"`
	File   string `type:"existingfile" help:"Replay a WAV file in real time instead of the microphone"`
	Loop   bool   `help:"Loop the WAV file"`
}

func (f SourceFlags) apply(cfg *types.Config) {
	if f.Device != "" {
		cfg.Capture.Device = f.Device
	}
	if f.File != "" {
		cfg.Capture.File = f.File
		cfg.Capture.Loop = f.Loop
	}
}

type RunCmd struct {
	SourceFlags
	TUI    bool `name:"tui" help:"Show the terminal UI"`
	NoDBus bool `name:"no-dbus" help:"Do not start the D-Bus service"`
}

func (c *RunCmd) Run(g *CLI) error {
	return runMeter(g, c.SourceFlags, c.TUI, c.NoDBus)
}

type TuiCmd struct {
	SourceFlags
	NoDBus bool `name:"no-dbus" help:"Do not start the D-Bus service"`
}

func (c *TuiCmd) Run(g *CLI) error {
	return runMeter(g, c.SourceFlags, true, c.NoDBus)
}

type CalibrateCmd struct {
	Device   string        `help:"Capture device name (substring match)"`
	Duration time.Duration `default:"3s" help:"Length of each measurement"`
}

func (c *CalibrateCmd) Run(g *CLI) error {
	store, err := config.NewStore(g.ConfigFile)
	if err != nil {
		return err
	}
	cfg, err := store.LoadOrDefault()
	if err != nil {
		return err
	}
	if c.Device != "" {
		cfg.Capture.Device = c.Device
	}
	cfg.Capture.File = ""

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wizard := &config.Wizard{
		Store:    store,
		Source:   audio.NewCapture(cfg.Capture),
		In:       os.Stdin,
		Out:      os.Stdout,
		Duration: c.Duration,
	}
	return wizard.Run(ctx)
}

type DevicesCmd struct{}

func (c *DevicesCmd) Run() error {
	devices, err := audio.ListDevices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return audio.ErrNoDevice
	}

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	bold.Println("🎤 Capture devices:")
	for _, d := range devices {
		if d.IsDefault {
			green.Printf("  * %s (default)\n", d.Name)
		} else {
			fmt.Printf("    %s\n", d.Name)
		}
	}
	return nil
}

type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" default:"1" help:"Print the effective configuration"`
	Init ConfigInitCmd `cmd:"" help:"Write a config file with the defaults"`
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(g *CLI) error {
	store, err := config.NewStore(g.ConfigFile)
	if err != nil {
		return err
	}
	cfg, err := store.LoadOrDefault()
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	cli.FprintKV(os.Stdout, "Config file:", store.Path())
	fmt.Println()
	fmt.Print(string(data))
	return nil
}

type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing config file"`
}

func (c *ConfigInitCmd) Run(g *CLI) error {
	store, err := config.NewStore(g.ConfigFile)
	if err != nil {
		return err
	}
	existing, err := store.LoadConfig()
	if err != nil && !c.Force {
		return err
	}
	if existing != nil && !c.Force {
		return fmt.Errorf("%s already exists, use --force to overwrite", store.Path())
	}
	if err := store.SaveConfig(types.DefaultConfig()); err != nil {
		return err
	}
	cli.PrintSuccess("Wrote " + store.Path())
	return nil
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("heartbeat"),
		kong.Description("Microphone-driven biofeedback meter"),
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	logger.SetLevel(cliArgs.LogLevel)
	if cliArgs.LogFilename != "" {
		if err := logger.SetOutputFile(cliArgs.LogFilename); err != nil {
			cli.PrintError(fmt.Sprintf("setting log file: %v", err))
			os.Exit(1)
		}
	}

	err := ctx.Run(cliArgs)
	logger.CloseLogFile()
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func runMeter(g *CLI, flags SourceFlags, withTUI, noDBus bool) error {
	store, err := config.NewStore(g.ConfigFile)
	if err != nil {
		return err
	}
	cfg, err := store.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	flags.apply(cfg)
	if noDBus {
		cfg.DBus.Enabled = false
	}
	state.Init(cfg)

	fileOps, err := fileops.NewDefaultFileOps()
	if err != nil {
		return fmt.Errorf("failed to initialize file operations: %w", err)
	}
	if err := fileOps.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create necessary directories: %w", err)
	}

	// The terminal belongs to the UI, so logs go to a file.
	if withTUI && g.LogFilename == "" {
		if err := logger.SetOutputFile(filepath.Join(fileOps.GetLogsDir(), "heartbeat.log")); err != nil {
			return err
		}
	}

	if err := fileOps.CheckPID(); errors.Is(err, fileops.ErrProcessAlreadyRunning) {
		return fmt.Errorf("another instance of heartbeat is already running: %w", err)
	}
	if err := fileOps.SavePID(); err != nil {
		return fmt.Errorf("failed to save PID file: %w", err)
	}
	defer func() {
		if err := fileOps.CleanupPID(); err != nil {
			logger.Error("Failed to cleanup PID file", err)
		}
	}()

	source, err := audio.NewSource(state.Get().Config.Capture)
	if err != nil {
		return err
	}

	var notifier notification.Notifier = notification.New()
	if withTUI {
		notifier = notification.NewSilent()
	}

	a, err := app.New(state.Get().Config, source, notifier)
	if err != nil {
		var cfgErr *loudness.ConfigurationError
		if errors.As(err, &cfgErr) {
			return fmt.Errorf("invalid loudness setting %s in %s: %w", cfgErr.Field, store.Path(), err)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !withTUI {
		logger.Info("Press Ctrl+C to stop")
		return a.Run(ctx)
	}
	return runWithTUI(ctx, a)
}

func runWithTUI(ctx context.Context, a *app.App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.NewModel(a.Modes, a.Heart), tea.WithAltScreen())

	a.Loop.Observe(func(res loudness.Result) {
		p.Send(tui.LevelMsg{
			Result:    res,
			Heart:     a.Heart.Snapshot(),
			Bars:      a.Waveform.Heights(),
			MaxHeight: a.Waveform.MaxHeight(),
		})
	})
	a.Meter.Subscribe(func() { p.Send(tui.SpikeMsg{}) })
	a.Modes.OnChange(func(active bool) { p.Send(tui.ModeMsg{Active: active}) })

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errCh
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	cancel()
	return <-errCh
}
