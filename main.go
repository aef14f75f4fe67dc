package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"

	"minftp/config"
	"minftp/protocol"
	"minftp/terminal"
)

const defaultConfig = "~/" + config.DefaultFileName

type options struct {
	Port   int    `short:"p" long:"port" description:"Control port (default 21)" value-name:"PORT"`
	Config string `short:"f" long:"config" description:"Config file" value-name:"FILE" default:"~/.minftprc"`
	Debug  bool   `short:"d" long:"debug" description:"Trace every command and reply on stderr"`
	Theme  string `long:"theme" description:"Color theme" choice:"dark" choice:"light" choice:"mono"`
	Table  bool   `long:"table" description:"Show listings as a table"`
	Log    string `long:"log" description:"Append a CSV record of each transfer to FILE" value-name:"FILE"`

	Args struct {
		Host string `positional-arg-name:"HOST" description:"FTP server host name"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts options
	p := flags.NewParser(&opts, flags.Default)
	if _, err := p.Parse(); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := run(&opts); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "minftp: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	host := opts.Args.Host

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	theme := newThemeManager(cfg.Theme, logger)
	completer := terminal.NewCommandCompleter()
	consoleOpts := []terminal.ConsoleOption{terminal.WithCompleter(completer)}
	if cfg.Listing == config.ListingTable {
		consoleOpts = append(consoleOpts, terminal.WithTableListing())
	}
	console := terminal.NewConsole(os.Stdout, os.Stderr, theme, consoleOpts...)

	session, err := protocol.NewSession(host, cfg.Port,
		protocol.WithDialer(proxy.FromEnvironment()),
		protocol.WithOutput(console.Emit),
		protocol.WithLogger(logger),
		protocol.WithChunkSize(cfg.ChunkSize),
		protocol.WithProgress(console.Progress),
	)
	if err != nil {
		return err
	}
	defer session.Disconnect()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	var once sync.Once
	interrupt := func() {
		once.Do(func() {
			cancel()
			console.Notice("\nReceived interrupt signal. Disconnecting from %s...", host)
			// The main goroutine may still be inside a session call. The
			// process exits right after, so nothing observes the state
			// this races with.
			_ = session.Disconnect()
			os.Exit(0)
		})
	}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		interrupt()
	}()

	input := terminal.NewLineReader(os.Stdin, os.Stdout, completer, interrupt)

	if err := session.Connect(); err != nil {
		return err
	}
	if err := session.Login(ctx, terminal.Credentials{Input: input, Console: console}); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	dispatchOpts := []terminal.DispatcherOption{
		terminal.WithCompletion(completer),
		terminal.WithDispatchLogger(logger),
	}
	if cfg.TransferLog != "" {
		dispatchOpts = append(dispatchOpts, terminal.WithTransferLog(cfg.TransferLog, host))
	}
	dispatcher := terminal.NewDispatcher(session, console, dispatchOpts...)

	if err := terminal.NewShell(session, dispatcher, input, console).Run(); err != nil {
		return err
	}
	console.Notice("Closing connection with: %s", host)
	return nil
}

// loadConfig reads the config file and applies the flags over it. The
// default file may be absent; one named with -f must exist.
func loadConfig(opts *options) (config.ClientConfig, error) {
	path, err := expandHome(opts.Config)
	if err != nil {
		return config.ClientConfig{}, err
	}
	cfg, err := config.Load(path, opts.Config != defaultConfig)
	if err != nil {
		return cfg, err
	}

	if opts.Port != 0 {
		cfg.Port = opts.Port
	}
	if opts.Debug {
		cfg.Debug = true
	}
	if opts.Theme != "" {
		cfg.Theme = opts.Theme
	}
	if opts.Table {
		cfg.Listing = config.ListingTable
	}
	if opts.Log != "" {
		cfg.TransferLog = opts.Log
	}
	return cfg, cfg.Validate()
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// newThemeManager falls back to an unsaved dark theme when the theme file
// cannot be used.
func newThemeManager(name string, logger *logrus.Logger) *terminal.ThemeManager {
	path, err := terminal.DefaultThemePath()
	if err != nil {
		logger.WithError(err).Warn("theme will not be saved")
	}
	tm, err := terminal.NewThemeManager(path)
	if err != nil {
		logger.WithError(err).Warn("failed to initialize theme manager")
		tm, _ = terminal.NewThemeManager("")
	}
	if name != "" {
		if err := tm.SetTheme(name); err != nil {
			logger.WithError(err).Warn("theme not applied")
		}
	}
	return tm
}
