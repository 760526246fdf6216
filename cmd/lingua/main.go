// Package main provides the CLI entrypoint for lingua.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lingua-health/lingua/internal/analysis"
	"github.com/lingua-health/lingua/internal/config"
	"github.com/lingua-health/lingua/internal/i18n"
	"github.com/lingua-health/lingua/internal/model"
	"github.com/lingua-health/lingua/internal/router"
	"github.com/lingua-health/lingua/internal/scans"
	"github.com/lingua-health/lingua/internal/session"
	"github.com/lingua-health/lingua/internal/stats"
	"github.com/lingua-health/lingua/internal/store"
	"github.com/lingua-health/lingua/internal/tui"
)

const (
	defaultStore      = "sqlite"
	defaultAPIKeyEnv  = "OPENAI_API_KEY"
	defaultTimeout    = 60 * time.Second
	defaultRedisAddr  = "localhost:6379"
	defaultNamespace  = "default"
	defaultHistoryFmt = "table"
)

var (
	appLanguage    string
	appStore       string
	appDBPath      string
	appEphemeral   bool
	appTrendWindow int
	appShareURL    string

	analysisModel   string
	analysisBaseURL string
	analysisKeyEnv  string
	analysisTimeout time.Duration

	redisAddr      string
	redisPassword  string
	redisDB        int
	redisNamespace string

	historyFormat string
	trendWindow   int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lingua",
		Short:         "Tongue scan health companion",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd, "")
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&appLanguage, "language", "", "UI language code (default: from LANG)")
	flags.StringVar(&appStore, "store", defaultStore, "storage backend: sqlite, redis, or memory")
	flags.StringVar(&appDBPath, "db-path", "", "sqlite database path")
	flags.BoolVar(&appEphemeral, "ephemeral", false, "keep everything in memory for this run")
	flags.IntVar(&appTrendWindow, "trend-window", stats.DefaultTrendWindow, "number of scans in the trend chart")
	flags.StringVar(&appShareURL, "share-url", "", "base URL for share links")
	flags.StringVar(&analysisModel, "model", analysis.DefaultModel, "vision model used for analysis")
	flags.StringVar(&analysisBaseURL, "base-url", "", "OpenAI-compatible API base URL")
	flags.StringVar(&analysisKeyEnv, "api-key-env", defaultAPIKeyEnv, "environment variable holding the API key")
	flags.DurationVar(&analysisTimeout, "timeout", defaultTimeout, "timeout for each AI request")
	flags.StringVar(&redisAddr, "redis-addr", defaultRedisAddr, "redis address for --store redis")

	rootCmd.AddCommand(newOpenCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newTrendCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// settings is the merged view of flags and config file.
type settings struct {
	chatModel      string
	translateModel string
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "language", &appLanguage, fileCfg.App.Language)
	applyStringConfig(cmd, "store", &appStore, fileCfg.App.Store)
	applyStringConfig(cmd, "db-path", &appDBPath, fileCfg.App.DBPath)
	applyIntConfig(cmd, "trend-window", &appTrendWindow, fileCfg.App.TrendWindow)
	applyStringConfig(cmd, "share-url", &appShareURL, fileCfg.App.ShareURL)
	applyStringConfig(cmd, "model", &analysisModel, fileCfg.Analysis.Model)
	applyStringConfig(cmd, "base-url", &analysisBaseURL, fileCfg.Analysis.BaseURL)
	applyStringConfig(cmd, "api-key-env", &analysisKeyEnv, fileCfg.Analysis.APIKeyEnv)
	if fileCfg.Analysis.Timeout != nil {
		timeout := fileCfg.Analysis.Timeout.Duration
		applyDurationConfig(cmd, "timeout", &analysisTimeout, &timeout)
	}
	applyStringConfig(cmd, "redis-addr", &redisAddr, fileCfg.Redis.Addr)

	redisPassword = valueOr(fileCfg.Redis.Password, "")
	redisNamespace = valueOr(fileCfg.Redis.Namespace, defaultNamespace)
	if fileCfg.Redis.DB != nil {
		redisDB = *fileCfg.Redis.DB
	}

	if err := validateSettings(); err != nil {
		return settings{}, err
	}
	return settings{
		chatModel:      valueOr(fileCfg.Analysis.ChatModel, ""),
		translateModel: valueOr(fileCfg.Analysis.TranslateModel, ""),
	}, nil
}

func validateSettings() error {
	switch appStore {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("--store must be sqlite, redis, or memory")
	}
	if appTrendWindow <= 0 {
		return fmt.Errorf("--trend-window must be > 0")
	}
	if analysisTimeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	return nil
}

func openStore(ctx context.Context) (store.KV, error) {
	backend := appStore
	if appEphemeral {
		backend = "memory"
	}
	switch backend {
	case "memory":
		return store.NewMemory(), nil
	case "redis":
		kv, err := store.NewRedis(&redis.Options{Addr: redisAddr, Password: redisPassword, DB: redisDB}, redisNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		if err := kv.Ping(ctx); err != nil {
			_ = kv.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", redisAddr, err)
		}
		return kv, nil
	default:
		path := appDBPath
		if path == "" {
			path = config.DefaultDBPath()
		}
		kv, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		return kv, nil
	}
}

func closeStore(kv store.KV) {
	if err := kv.Close(); err != nil {
		logErrf("failed to close store: %v\n", err)
	}
}

// newAnalysisClient returns nil when no API key is configured; the session
// then reports analysis and translation as unavailable.
func newAnalysisClient(s settings) *analysis.Client {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logErrf("failed to read .env: %v\n", err)
	}
	key := strings.TrimSpace(os.Getenv(analysisKeyEnv))
	if key == "" {
		logErrf("%s is not set; scans and translations are disabled\n", analysisKeyEnv)
		return nil
	}
	client, err := analysis.NewClient(analysis.Config{
		APIKey:         key,
		BaseURL:        analysisBaseURL,
		Model:          analysisModel,
		ChatModel:      s.chatModel,
		TranslateModel: s.translateModel,
		Timeout:        analysisTimeout,
	})
	if err != nil {
		logErrf("failed to configure analysis client: %v\n", err)
		return nil
	}
	return client
}

func runApp(cmd *cobra.Command, link string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	client := newAnalysisClient(s)

	kv, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(kv)

	logPath := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := tea.LogToFile(logPath, "lingua")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()

	opts := session.Options{
		Store:           kv,
		Location:        router.NewLocation(link),
		Logger:          log.Default(),
		StartupLanguage: startupLanguage(),
		ShareURL:        appShareURL,
		TrendWindow:     appTrendWindow,
	}
	if client != nil {
		opts.Analyzer = client
		opts.Translator = client
		opts.Chatter = client
	}
	ctrl, err := session.New(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	m := tui.NewModel(ctx, ctrl, time.Local)
	defer m.Close()
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// startupLanguage prefers the configured language, then the locale environment.
func startupLanguage() string {
	if appLanguage != "" {
		return appLanguage
	}
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" && v != "C" && v != "POSIX" {
			return v
		}
	}
	return ""
}

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <link>",
		Short: "Open the app at a shared scan link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !strings.HasPrefix(router.FragmentOf(args[0]), router.FragmentPrefix) {
				return fmt.Errorf("not a scan link: %s", args[0])
			}
			return runApp(cmd, args[0])
		},
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the scan history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyFormat, "format", defaultHistoryFmt, "output format: table, json, or yaml")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadSettings(cmd); err != nil {
		return err
	}
	ctx := context.Background()
	kv, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(kv)

	records := scans.Load(ctx, kv, log.New(os.Stderr, "", 0)).All()
	return writeHistory(cmd.OutOrStdout(), records, historyFormat, time.Local)
}

// historyEntry is the exported form of a scan; the image is left out.
type historyEntry struct {
	ID        string    `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Summary   string    `json:"summary" yaml:"summary"`
	Redness   float64   `json:"redness" yaml:"redness"`
	Moisture  float64   `json:"moisture" yaml:"moisture"`
	Cracks    float64   `json:"cracks" yaml:"cracks"`
	Color     string    `json:"color" yaml:"color"`
	Texture   string    `json:"texture" yaml:"texture"`
	Urgency   string    `json:"urgency" yaml:"urgency"`
}

func historyEntries(records []model.ScanRecord) []historyEntry {
	out := make([]historyEntry, len(records))
	for i, rec := range records {
		out[i] = historyEntry{
			ID:        rec.ID,
			Timestamp: rec.Timestamp,
			Summary:   rec.Summary,
			Redness:   rec.Results.Redness,
			Moisture:  rec.Results.Moisture,
			Cracks:    rec.Results.Cracks,
			Color:     rec.Results.Color,
			Texture:   rec.Results.Texture,
			Urgency:   rec.Results.Guidance.MedicalUrgency,
		}
	}
	return out
}

func writeHistory(w io.Writer, records []model.ScanRecord, format string, loc *time.Location) error {
	switch format {
	case "table":
		return stats.RenderHistoryTable(w, records, loc)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(historyEntries(records)); err != nil {
			return fmt.Errorf("failed to write json: %w", err)
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(historyEntries(records)); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("--format must be table, json, or yaml")
	}
}

func newTrendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show streak and health trend",
		Args:  cobra.NoArgs,
		RunE:  runTrendCmd,
	}
	cmd.Flags().IntVar(&trendWindow, "window", 0, "number of recent scans to chart (default: trend-window)")
	return cmd
}

func runTrendCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadSettings(cmd); err != nil {
		return err
	}
	window := appTrendWindow
	if trendWindow > 0 {
		window = trendWindow
	}
	ctx := context.Background()
	kv, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(kv)

	report := stats.LoadReport(ctx, kv, window, time.Now(), time.Local, log.New(os.Stderr, "", 0))
	if len(report.Records) == 0 {
		logErrln("No scans yet. Start one with: lingua")
		return nil
	}
	return stats.RenderReport(cmd.OutOrStdout(), report, 0, false)
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List UI languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	for _, l := range i18n.Languages {
		dir := ""
		if i18n.IsRTL(l.Code) {
			dir = " (rtl)"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-3s %-11s %s%s\n", l.Code, l.Name, l.NativeName, dir); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target, value *time.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func valueOr(value *string, def string) string {
	if value == nil {
		return def
	}
	return *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# lingua configuration
# Uncomment a value to enable it. CLI flags override config values.

[app]
# language = "en"              # UI language code (default: from LANG)
# store = %q               # sqlite, redis, or memory
# db-path = %q
# trend-window = %d             # Number of scans in the trend chart
# share-url = "https://lingua.app"  # Base URL for share links

[analysis]
# model = %q                # Vision model used for analysis
# chat-model = %q       # Model for follow-up questions
# translate-model = %q  # Model for UI translation
# base-url = ""                 # OpenAI-compatible API base URL
# api-key-env = %q   # Environment variable holding the API key
# timeout = %q                 # Timeout for each AI request

[redis]
# addr = %q
# password = ""
# db = 0
# namespace = %q
`,
		defaultStore,
		config.DefaultDBPath(),
		stats.DefaultTrendWindow,
		analysis.DefaultModel,
		analysis.DefaultTextModel,
		analysis.DefaultTextModel,
		defaultAPIKeyEnv,
		defaultTimeout.String(),
		defaultRedisAddr,
		defaultNamespace,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
