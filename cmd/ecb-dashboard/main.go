// ABOUTME: Entry point for the ecb-dashboard server and operator tooling
// ABOUTME: Subcommands cover serving, setup, PIN hashing, and offline data

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/datalens/ecb-dashboard/internal/auth"
	"github.com/datalens/ecb-dashboard/internal/config"
	"github.com/datalens/ecb-dashboard/internal/ecb"
	"github.com/datalens/ecb-dashboard/internal/server"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
             _                 _              _      _                              _
  ___   ___ | |__           __| |  __ _  ___ | |__  | |__    ___    __ _  _ __   __| |
 / _ \ / __|| '_ \  _____  / _' | / _' |/ __|| '_ \ | '_ \  / _ \  / _' || '__| / _' |
|  __/| (__ | |_) ||_____|| (_| || (_| |\__ \| | | || |_) || (_) || (_| || |   | (_| |
 \___| \___||_.__/         \__,_| \__,_||___/|_| |_||_.__/  \___/  \__,_||_|    \__,_|
`

// getConfigPath returns the path to the dashboard config file.
// Priority: ECB_DASHBOARD_CONFIG env var > XDG_CONFIG_HOME/ecb-dashboard/config.yaml > ~/.config/ecb-dashboard/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("ECB_DASHBOARD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "ecb-dashboard", "config.yaml")
}

// getDataPath returns the path to the dashboard data directory.
// Priority: XDG_DATA_HOME/ecb-dashboard > ~/.local/share/ecb-dashboard
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "ecb-dashboard")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ecb-dashboard <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                 Start the dashboard server")
		fmt.Println("  init                  Create a new config file interactively")
		fmt.Println("  pin                   Generate a bcrypt hash for a new PIN")
		fmt.Println("  fetch                 Download ECB series data for offline use")
		fmt.Println("  datamode              Show or set the API/local data mode")
		fmt.Println("  health                Check dashboard health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "pin":
		err = runPin()
	case "fetch":
		err = runFetch(ctx)
	case "datamode":
		err = runDatamode()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)

	// Startup info
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)

	if cfg.ECB.UseLocalData {
		green.Print("    ▶ ")
		fmt.Print("Data:      ")
		yellow.Print("local files")
		gray.Printf(" (%s)\n", cfg.ECB.LocalDataDir)
	}

	// Tailscale status
	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	}

	fmt.Println()

	logger.Info("starting ecb-dashboard",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"database", cfg.Database.Path,
	)

	// Create and run server
	srv, err := server.New(cfg, version, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

// runPin prompts for a new PIN without echo and prints the bcrypt hash to
// put into security.pin_hash.
func runPin() error {
	fmt.Println("ecb-dashboard PIN setup")
	fmt.Println("=======================")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	pin, err := readPIN(reader, "New PIN (6 digits): ")
	if err != nil {
		return err
	}
	if !auth.ValidPINFormat(pin) {
		return fmt.Errorf("PIN must be exactly %d digits", auth.PINLength)
	}

	confirm, err := readPIN(reader, "Confirm PIN: ")
	if err != nil {
		return err
	}
	if pin != confirm {
		return fmt.Errorf("PINs do not match")
	}

	hash, err := auth.HashPIN(pin)
	if err != nil {
		return err
	}
	if !auth.VerifyPIN(pin, hash) {
		return fmt.Errorf("generated hash failed verification")
	}

	green := color.New(color.FgGreen)
	fmt.Println()
	green.Println("  PIN hash generated and verified.")
	fmt.Println()
	fmt.Println("  Add it to your config file:")
	fmt.Println()
	fmt.Println("  security:")
	fmt.Printf("    pin_hash: \"%s\"\n", hash)
	fmt.Println()
	fmt.Println("  Then restart the server.")

	return nil
}

// readPIN reads a line without echo when stdin is a terminal, falling back
// to a plain read for piped input.
func readPIN(reader *bufio.Reader, promptText string) (string, error) {
	fmt.Print(promptText)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading PIN: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading PIN: %w", err)
	}
	fmt.Println()
	return strings.TrimSpace(line), nil
}

// runFetch downloads SDMX-JSON documents for catalog series into the local
// data directory, so the dashboard can run without ECB API access.
func runFetch(ctx context.Context) error {
	// Supports both "--series value" and "--series=value" formats
	var seriesArg, start, end string
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--series" || arg == "-s":
			if i+1 >= len(args) {
				return fmt.Errorf("--series requires a value")
			}
			seriesArg = args[i+1]
			i++
		case strings.HasPrefix(arg, "--series="):
			seriesArg = strings.TrimPrefix(arg, "--series=")
		case arg == "--start":
			if i+1 >= len(args) {
				return fmt.Errorf("--start requires a value")
			}
			start = args[i+1]
			i++
		case strings.HasPrefix(arg, "--start="):
			start = strings.TrimPrefix(arg, "--start=")
		case arg == "--end":
			if i+1 >= len(args) {
				return fmt.Errorf("--end requires a value")
			}
			end = args[i+1]
			i++
		case strings.HasPrefix(arg, "--end="):
			end = strings.TrimPrefix(arg, "--end=")
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			return fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	specs, err := resolveSeries(seriesArg)
	if err != nil {
		return err
	}
	if start == "" && end == "" {
		start, end = ecb.DefaultRange(cfg.ECB.DefaultRangeMonths)
	}

	outDir := cfg.ECB.LocalDataDir
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating local data directory: %w", err)
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	gray := color.New(color.FgHiBlack)

	fmt.Printf("Fetching %d series from %s\n", len(specs), cfg.ECB.BaseURL)
	gray.Printf("  range: %s .. %s\n", start, end)
	gray.Printf("  output: %s\n\n", outDir)

	client := ecb.NewClient(cfg.ECB, setupLogger(cfg.Logging))

	failed := 0
	for _, spec := range specs {
		raw, err := client.FetchRaw(ctx, spec, start, end)
		if err != nil {
			red.Printf("  ✗ %s", spec.Name)
			gray.Printf(" (%v)\n", err)
			failed++
			continue
		}

		path := filepath.Join(outDir, spec.Name+".json")
		if err := os.WriteFile(path, raw, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}

		green.Printf("  ✓ %s", spec.Name)
		gray.Printf(" (%d bytes)\n", len(raw))
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d of %d series failed", failed, len(specs))
	}
	green.Printf("All %d series saved.\n", len(specs))
	fmt.Println()
	fmt.Println("To serve from these files:")
	fmt.Println("  ecb-dashboard datamode local")
	return nil
}

// resolveSeries turns a comma-separated name list into catalog specs, or
// the full catalog when the list is empty.
func resolveSeries(arg string) ([]config.SeriesSpec, error) {
	if arg == "" {
		return config.Series(), nil
	}

	var specs []config.SeriesSpec
	for _, name := range strings.Split(arg, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		spec, ok := config.FindSeries(name)
		if !ok {
			names := make([]string, 0, len(config.Series()))
			for _, s := range config.Series() {
				names = append(names, s.Name)
			}
			return nil, fmt.Errorf("unknown series %q (available: %s)", name, strings.Join(names, ", "))
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("--series list is empty")
	}
	return specs, nil
}

// runDatamode shows or flips ecb.use_local_data in the config file. The
// edit is a line replacement so comments and ordering survive.
func runDatamode() error {
	configPath := getConfigPath()

	mode := "status"
	if len(os.Args) > 2 {
		mode = os.Args[2]
	}

	switch mode {
	case "status":
		return printDatamodeStatus(configPath)
	case "local", "api":
		if err := setDatamode(configPath, mode == "local"); err != nil {
			return err
		}
		return printDatamodeStatus(configPath)
	default:
		return fmt.Errorf("usage: ecb-dashboard datamode [local|api|status]")
	}
}

func setDatamode(configPath string, useLocal bool) error {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	lines := strings.Split(string(raw), "\n")
	found := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "use_local_data:") {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		lines[i] = fmt.Sprintf("%suse_local_data: %t", indent, useLocal)
		found = true
		break
	}
	if !found {
		return fmt.Errorf("no use_local_data setting in %s; add one under the ecb section", configPath)
	}

	if err := os.WriteFile(configPath, []byte(strings.Join(lines, "\n")), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	modeName := "API"
	if useLocal {
		modeName = "LOCAL"
	}
	color.New(color.FgGreen).Printf("Data mode set to %s\n\n", modeName)
	return nil
}

func printDatamodeStatus(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	yellow := color.New(color.FgYellow)

	fmt.Print("Current mode: ")
	if cfg.ECB.UseLocalData {
		cyan.Println("LOCAL")
		fmt.Printf("Data directory: %s\n", cfg.ECB.LocalDataDir)

		entries, err := os.ReadDir(cfg.ECB.LocalDataDir)
		if err != nil {
			yellow.Println("Data directory does not exist; run: ecb-dashboard fetch")
			return nil
		}

		count := 0
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			gray.Printf("  %s (%d bytes)\n", e.Name(), info.Size())
			count++
		}
		if count == 0 {
			yellow.Println("No data files found; run: ecb-dashboard fetch")
		}
	} else {
		cyan.Println("API")
		fmt.Printf("Base URL: %s\n", cfg.ECB.BaseURL)
		fmt.Printf("Rate limit: %d requests/minute\n", cfg.ECB.RateLimitPerMinute)
	}
	return nil
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	var body struct {
		Status         string `json:"status"`
		Version        string `json:"version"`
		DBState        string `json:"db_state"`
		ActiveSessions int    `json:"active_sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}

	fmt.Printf("status:   %s\n", body.Status)
	fmt.Printf("version:  %s\n", body.Version)
	fmt.Printf("store:    %s\n", body.DBState)
	fmt.Printf("sessions: %d\n", body.ActiveSessions)
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("ecb-dashboard configuration setup")
	fmt.Println("=================================")
	fmt.Println()

	// Default paths
	defaultConfigPath := getConfigPath()
	defaultDataPath := getDataPath()
	defaultDbPath := filepath.Join(defaultDataPath, "dashboard.db")

	// Output filename
	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	// Check if file exists
	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Server configuration
	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "localhost:5000")

	// Database
	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	// Security
	fmt.Println("\n--- Security Configuration ---")
	var pinHash string
	setPin := prompt(reader, "Set an access PIN now?", "yes")
	if strings.ToLower(setPin) == "yes" || strings.ToLower(setPin) == "y" {
		pin, err := readPIN(reader, "New PIN (6 digits): ")
		if err != nil {
			return err
		}
		if !auth.ValidPINFormat(pin) {
			return fmt.Errorf("PIN must be exactly %d digits", auth.PINLength)
		}
		confirm, err := readPIN(reader, "Confirm PIN: ")
		if err != nil {
			return err
		}
		if pin != confirm {
			return fmt.Errorf("PINs do not match")
		}
		pinHash, err = auth.HashPIN(pin)
		if err != nil {
			return err
		}
	}

	// Tailscale
	fmt.Println("\n--- Tailscale Configuration ---")
	enableTailscale := prompt(reader, "Enable Tailscale?", "no")
	tailscaleEnabled := strings.ToLower(enableTailscale) == "yes" || strings.ToLower(enableTailscale) == "y"

	var tsHostname, tsAuthKey string
	var tsEphemeral, tsHTTPS, tsFunnel bool
	if tailscaleEnabled {
		tsHostname = prompt(reader, "Tailscale hostname", "ecb-dashboard")
		tsAuthKey = prompt(reader, "Tailscale auth key (leave empty for TS_AUTHKEY)", "")
		ephemeralStr := prompt(reader, "Ephemeral node?", "no")
		tsEphemeral = strings.ToLower(ephemeralStr) == "yes" || strings.ToLower(ephemeralStr) == "y"
		httpsStr := prompt(reader, "Serve HTTPS with Tailscale certs?", "no")
		tsHTTPS = strings.ToLower(httpsStr) == "yes" || strings.ToLower(httpsStr) == "y"
		funnelStr := prompt(reader, "Enable Funnel (public HTTPS)?", "no")
		tsFunnel = strings.ToLower(funnelStr) == "yes" || strings.ToLower(funnelStr) == "y"
	}

	// ECB data
	fmt.Println("\n--- ECB Data Configuration ---")
	localData := prompt(reader, "Serve from downloaded files instead of the ECB API?", "no")
	useLocalData := strings.ToLower(localData) == "yes" || strings.ToLower(localData) == "y"
	localDataDir := prompt(reader, "Local data directory", filepath.Join(defaultDataPath, "raw-data"))

	// Logging
	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	// Generate config
	var cfg strings.Builder
	cfg.WriteString("# ecb-dashboard configuration\n")
	cfg.WriteString("# Generated by ecb-dashboard init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: \"%s\"\n", httpAddr))
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("security:\n")
	if pinHash != "" {
		cfg.WriteString(fmt.Sprintf("  pin_hash: \"%s\"\n", pinHash))
	} else {
		cfg.WriteString("  # pin_hash omitted: factory PIN 112233. Generate your own:\n")
		cfg.WriteString("  #   ecb-dashboard pin\n")
	}
	cfg.WriteString("  max_attempts: 5\n")
	cfg.WriteString("  session_timeout: \"30m\"\n")
	cfg.WriteString("  lockout_duration: \"15m\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("tailscale:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", tailscaleEnabled))
	if tailscaleEnabled {
		cfg.WriteString(fmt.Sprintf("  hostname: \"%s\"\n", tsHostname))
		if tsAuthKey != "" {
			cfg.WriteString(fmt.Sprintf("  auth_key: \"%s\"\n", tsAuthKey))
		}
		cfg.WriteString(fmt.Sprintf("  ephemeral: %t\n", tsEphemeral))
		cfg.WriteString(fmt.Sprintf("  https: %t\n", tsHTTPS))
		cfg.WriteString(fmt.Sprintf("  funnel: %t\n", tsFunnel))
	}
	cfg.WriteString("\n")

	cfg.WriteString("ecb:\n")
	cfg.WriteString("  base_url: \"https://data-api.ecb.europa.eu/service\"\n")
	cfg.WriteString(fmt.Sprintf("  use_local_data: %t\n", useLocalData))
	cfg.WriteString(fmt.Sprintf("  local_data_dir: \"%s\"\n", localDataDir))
	cfg.WriteString("  rate_limit_per_minute: 10\n")
	cfg.WriteString("  default_range_months: 12\n")
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	// Ensure config directory exists
	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The file carries the PIN hash; keep it private.
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	// Ensure data directory exists
	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	if pinHash == "" {
		color.New(color.FgYellow).Println("\nUsing the factory PIN 112233. Change it before exposing the dashboard:")
		fmt.Println("  ecb-dashboard pin")
	}
	fmt.Println("\nTo start the server:")
	fmt.Printf("  ecb-dashboard serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
