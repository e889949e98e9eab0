package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mockprep/mockprep-go/internal/apiclient"
	"github.com/mockprep/mockprep-go/internal/config"
	"github.com/mockprep/mockprep-go/internal/localstore"
	"github.com/mockprep/mockprep-go/internal/marketplace"
	"github.com/mockprep/mockprep-go/internal/session"
)

var errNotLoggedIn = errors.New("not logged in, run `mockprep login` first")

type rootOptions struct {
	configPath string
	logLevel   string
	apiURL     string
	dataDir    string
}

// app holds what every command needs. It is filled by the root command's
// PersistentPreRunE.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	in      *bufio.Reader
	out     io.Writer
	store   localstore.Store
	api     *apiclient.Client
	session *session.Manager
	market  *marketplace.Client
}

func (a *app) setup(cmd *cobra.Command, opts rootOptions) error {
	a.in = bufio.NewReader(cmd.InOrStdin())
	a.out = cmd.OutOrStdout()
	a.logger = newLogger(cmd.ErrOrStderr(), opts.logLevel)
	slog.SetDefault(a.logger)

	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.apiURL != "" {
		cfg.APIBaseURL = opts.apiURL
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	store, err := localstore.NewFile(cfg.StorePath())
	if err != nil {
		return err
	}
	jar, err := apiclient.NewFileJar(cfg.CookiePath(), cfg.APIBaseURL)
	if err != nil {
		return err
	}

	a.store = store
	a.api = apiclient.New(cfg.APIBaseURL,
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout, Jar: jar}),
		apiclient.WithLogger(a.logger),
	)
	a.session = session.New(a.api, store, a.logger)
	a.market = marketplace.New(a.api)

	a.logger.Debug("client configured", "api", cfg.APIBaseURL, "data_dir", cfg.DataDir)
	return nil
}

// requireSession restores the previous session or fails.
func (a *app) requireSession(ctx context.Context) error {
	if a.session.IsAuthenticated() {
		return nil
	}
	if a.session.Init(ctx) != session.Authenticated {
		return errNotLoggedIn
	}
	return nil
}

// readLine prints prompt and reads one line of input.
func (a *app) readLine(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl := slog.LevelWarn
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func rootCmd() *cobra.Command {
	var opts rootOptions
	a := &app{}

	cmd := &cobra.Command{
		Use:           "mockprep",
		Short:         "MockPrep interview marketplace client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Backend base URL (overrides API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Directory for local state (overrides DATA_DIR)")

	cmd.AddCommand(
		loginCmd(a),
		registerCmd(a),
		googleLoginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		verifyAdminCmd(a),
		expertsCmd(a),
		sessionsCmd(a),
		bookCmd(a),
		joinCmd(a),
		notificationsCmd(a),
		certificationsCmd(a),
		adminCmd(a),
	)
	return cmd
}
