package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/canyon-webchat/internal/config"
	"github.com/zhouzirui/canyon-webchat/internal/logging"
	"github.com/zhouzirui/canyon-webchat/internal/panel"
	"github.com/zhouzirui/canyon-webchat/internal/service/concierge"
	"github.com/zhouzirui/canyon-webchat/internal/transcript"
	"github.com/zhouzirui/canyon-webchat/internal/view/console"
	"github.com/zhouzirui/canyon-webchat/internal/view/tui"
)

type flags struct {
	server            string
	guestName         string
	timeout           time.Duration
	pendingPolicy     string
	resetAlertOnNonOK bool
	logLevel          string
	logFile           string
	withCaller        bool
	plain             bool
	transcript        string
}

var (
	opts      flags
	cfg       *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "chatpanel",
	Short:         "Chat with the Canyon Concierge from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dotEnvErr := config.LoadDotEnv()

		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded

		var fallback io.Writer
		if !useTUI() {
			fallback = os.Stderr
		}
		logCloser, err = logging.Setup(logging.Settings{
			Level:      cfg.Log.Level,
			File:       cfg.Log.File,
			WithCaller: opts.withCaller,
			Fallback:   fallback,
		})
		if err != nil {
			return err
		}
		if dotEnvErr != nil {
			log.Debug().Err(dotEnvErr).Msg("no .env file loaded, using process environment only")
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), cfg)
	},
}

func init() {
	registerFlags(rootCmd)
}

func registerFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&opts.server, "server", "", "base URL of the chat service (env CHAT_SERVER_URL)")
	f.StringVar(&opts.guestName, "guest-name", "", "value sent as User (env CHAT_GUEST_NAME)")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout, 0 for none (env CHAT_REQUEST_TIMEOUT)")
	f.StringVar(&opts.pendingPolicy, "pending-policy", "", "block, allow or drop-stale (env CHAT_PENDING_POLICY)")
	f.BoolVar(&opts.resetAlertOnNonOK, "reset-alert-on-non-ok", false, "alert when reset gets a non-2xx answer")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (env CHAT_LOG_LEVEL)")
	f.StringVar(&opts.logFile, "log-file", "", "write logs to this file (env CHAT_LOG_FILE)")
	f.BoolVar(&opts.withCaller, "with-caller", false, "include caller (file:line) in logs")
	f.BoolVar(&opts.plain, "plain", false, "use the line-mode console even on a terminal")
	f.StringVar(&opts.transcript, "transcript", "", "write an HTML transcript to this file on exit")
}

// loadConfig reads the environment, lets explicit flags override it and only
// then validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.Read()
	if err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	applyFlags(cmd, c)
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return c, nil
}

// applyFlags lets explicitly set flags override the environment.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("server") {
		c.Client.ServerURL = opts.server
	}
	if f.Changed("guest-name") {
		c.Client.GuestName = opts.guestName
	}
	if f.Changed("timeout") {
		c.Client.RequestTimeout = opts.timeout
	}
	if f.Changed("pending-policy") {
		c.Client.PendingPolicy = opts.pendingPolicy
	}
	if f.Changed("reset-alert-on-non-ok") {
		c.Client.ResetAlertOnNonOK = opts.resetAlertOnNonOK
	}
	if f.Changed("log-level") {
		c.Log.Level = opts.logLevel
	}
	if f.Changed("log-file") {
		c.Log.File = opts.logFile
	}
}

func useTUI() bool {
	if opts.plain {
		return false
	}
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func run(ctx context.Context, cfg *config.Config) error {
	client, err := concierge.New(concierge.Options{
		BaseURL: cfg.Client.ServerURL,
		User:    cfg.Client.GuestName,
		Timeout: cfg.Client.RequestTimeout,
	})
	if err != nil {
		return err
	}

	pending, err := cfg.Client.Pending()
	if err != nil {
		return err
	}
	panelOpts := panel.Options{
		Pending: pending,
		Reset:   cfg.Client.ResetPolicy(),
		Timeout: cfg.Client.RequestTimeout,
	}

	log.Info().
		Str("server", cfg.Client.ServerURL).
		Str("pending_policy", pending.String()).
		Str("reset_policy", panelOpts.Reset.String()).
		Bool("tui", useTUI()).
		Msg("starting chat panel")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ctrl *panel.Controller
	if useTUI() {
		ctrl, err = runTUI(runCtx, client, panelOpts)
	} else {
		ctrl, err = runConsole(runCtx, client, panelOpts)
	}
	if ctrl != nil {
		// abort in-flight requests and let their continuations finish
		cancel()
		ctrl.Wait()
	}
	if err != nil {
		return err
	}

	if opts.transcript != "" && ctrl != nil {
		if err := writeTranscript(opts.transcript, ctrl); err != nil {
			return err
		}
		log.Info().Str("path", opts.transcript).Msg("transcript written")
	}
	return nil
}

func runTUI(ctx context.Context, backend panel.Backend, panelOpts panel.Options) (*panel.Controller, error) {
	bridge := tui.NewBridge()
	ctrl, err := panel.New(ctx, backend, panel.Ports{
		View:      bridge,
		Input:     bridge,
		Submit:    bridge,
		Reset:     bridge,
		Notifier:  bridge,
		Reloader:  bridge,
		Indicator: bridge,
	}, panelOpts)
	if err != nil {
		return nil, err
	}
	bridge.OnInit(ctrl.Initialize)

	program := tea.NewProgram(tui.NewModel(bridge), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(program)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return ctrl, errors.Wrap(err, "run terminal ui")
	}
	return ctrl, nil
}

func runConsole(ctx context.Context, backend panel.Backend, panelOpts panel.Options) (*panel.Controller, error) {
	var ctrl *panel.Controller
	con := console.New(os.Stdin, os.Stdout, os.Stderr, console.WithSettle(func() {
		if ctrl != nil {
			ctrl.Wait()
		}
	}))

	ctrl, err := panel.New(ctx, backend, panel.Ports{
		View:     con,
		Input:    con,
		Submit:   con,
		Reset:    con,
		Notifier: con,
		Reloader: con,
	}, panelOpts)
	if err != nil {
		return nil, err
	}
	ctrl.Initialize()

	return ctrl, con.Run(ctx)
}

func writeTranscript(path string, ctrl *panel.Controller) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create transcript file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close transcript file")
		}
	}()
	return transcript.Write(f, ctrl.Messages())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("chatpanel failed")
		os.Exit(1)
	}
}
