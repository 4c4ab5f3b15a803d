package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/danielholmes839/microstatus-dtr/internal/cli"
	"github.com/danielholmes839/microstatus-dtr/internal/config"
	"github.com/danielholmes839/microstatus-dtr/internal/microstatus"
	"github.com/danielholmes839/microstatus-dtr/internal/notify"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if isTerminal(os.Stderr) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// app is everything one run needs, wired from config and flags.
type app struct {
	logger   *slog.Logger
	progress microstatus.Progress
	client   *microstatus.Client
	notifier notify.Notifier
}

func launch(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	strategy, _ := flags.GetString("strategy")
	headed, _ := flags.GetBool("headed")
	verbose, _ := flags.GetBool("verbose")

	logger := newLogger(verbose)
	slog.SetDefault(logger)

	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, configPath)
	if err != nil {
		return nil, err
	}
	if strategy != "" {
		cfg.Strategy = strategy
	}
	if headed {
		headless := false
		cfg.Headless = &headless
	}

	timeouts := cfg.PortalTimeouts()
	recorder, err := microstatus.NewRecorder(cfg.Strategy, cfg.StatusEndpoint, timeouts)
	if err != nil {
		return nil, err
	}

	var progress microstatus.Progress = cli.NewLines(os.Stdout)
	var prompter microstatus.CodePrompter = cli.NoninteractivePrompter{}
	if isTerminal(os.Stdout) {
		progress = cli.NewSpinner(os.Stdout)
	}
	if isTerminal(os.Stdin) {
		prompter = cli.CodePrompter{}
	}

	var notifier notify.Notifier = notify.Nop
	if cfg.Discord.Enabled() {
		notifier, err = notify.NewDiscord(cfg.Discord.WebhookID, cfg.Discord.WebhookToken, cfg.EmployeeID)
		if err != nil {
			return nil, err
		}
	}

	cookies := &microstatus.CookieStore{Fs: fs, Path: cfg.CookieFile}
	saved, err := cookies.Load(time.Now())
	if err != nil {
		logger.Warn("ignoring saved cookies", "err", err)
		saved = nil
	}

	progress.Start("Initializing.")
	startup := time.Now()
	session, err := microstatus.Launch(microstatus.LaunchOptions{
		BaseURL:  cfg.BaseURL,
		Headless: cfg.IsHeadless(),
		Timeout:  cfg.Timeouts.Navigation,
		Cookies:  saved,
	})
	if err != nil {
		progress.Fail("")
		return nil, err
	}
	progress.Succeed("")
	logger.Debug("launched playwright browser", "dur", time.Since(startup).String(), "headless", cfg.IsHeadless())

	client := &microstatus.Client{
		Session: session,
		Credentials: microstatus.Credentials{
			EmployeeID: cfg.EmployeeID,
			Password:   cfg.Password,
		},
		Authenticator: &microstatus.Authenticator{
			Prompter:    prompter,
			Progress:    progress,
			Logger:      logger,
			Timeouts:    timeouts,
			MaxAttempts: cfg.MaxVerificationAttempts,
		},
		Recorder: recorder,
		Progress: progress,
		Logger:   logger,
		Timeouts: timeouts,
		Cookies:  cookies,
	}

	return &app{
		logger:   logger,
		progress: progress,
		client:   client,
		notifier: notifier,
	}, nil
}

func (a *app) close() {
	a.progress.Stop()
	if err := a.client.Session.Close(); err != nil {
		a.logger.Warn("failed to close browser", "err", err)
	}
}

func record(cmd *cobra.Command, direction microstatus.Direction) error {
	a, err := launch(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	run, err := a.client.Record(cmd.Context(), direction)
	if err != nil {
		return err
	}
	a.progress.Stop()

	fmt.Println(cli.RenderLog(run.Log))

	if err := a.notifier.Notify(run); err != nil {
		a.logger.Warn("failed to send notification", "err", err)
	}
	return nil
}

func showLog(cmd *cobra.Command, _ []string) error {
	a, err := launch(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	log, err := a.client.ReadLog(cmd.Context())
	if err != nil {
		return err
	}
	a.progress.Stop()

	fmt.Println(cli.RenderLog(log))
	return nil
}

func setup(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	skipInstall, _ := cmd.Flags().GetBool("skip-install")

	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	fs := afero.NewOsFs()
	cfg, err := config.ReadFileOrEmpty(fs, configPath)
	if err != nil {
		return err
	}

	fmt.Println(cli.Title("MicroStatus setup"))
	id, password, err := cli.PromptCredentials(cmd.Context(), cfg.EmployeeID, cfg.Password)
	if err != nil {
		return err
	}
	cfg.EmployeeID = id
	cfg.Password = password

	if err := config.Save(fs, configPath, cfg); err != nil {
		return err
	}
	fmt.Printf("Saved credentials to %s\n", configPath)

	if skipInstall {
		return nil
	}

	progress := cli.NewSpinner(os.Stdout)
	progress.Start("Installing browser.")
	if err := microstatus.Install(); err != nil {
		progress.Fail("")
		return err
	}
	progress.Succeed("")
	return nil
}
