// ABOUTME: Entry point for the session-gateway relay server and auth CLI
// ABOUTME: Subcommands cover serving the relay and exercising the auth client

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pandora-edu/session-gateway/internal/client"
	"github.com/pandora-edu/session-gateway/internal/config"
	"github.com/pandora-edu/session-gateway/internal/gateway"
	"github.com/pandora-edu/session-gateway/internal/guard"
	"github.com/pandora-edu/session-gateway/internal/relay"
	"github.com/pandora-edu/session-gateway/internal/session"
	"github.com/pandora-edu/session-gateway/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 ___  ___  ___ ___(_) ___  _ __         __ ___      __
/ __|/ _ \/ __/ __| |/ _ \| '_ \ _____ / _' \ \ /\ / /
\__ \  __/\__ \__ \ | (_) | | | |_____| (_| |\ V  V /
|___/\___||___/___/_|\___/|_| |_|      \__, | \_/\_/
                                       |___/
`

// getConfigPath returns the path to the gateway config file.
// Priority: SESSION_GATEWAY_CONFIG env var > XDG_CONFIG_HOME > ~/.config.
func getConfigPath() string {
	if envPath := os.Getenv("SESSION_GATEWAY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "session-gateway.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "session-gateway", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: session-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve           Start the same-origin relay server")
		fmt.Println("  login EMAIL     Authenticate and store the session")
		fmt.Println("  register        Create an account interactively")
		fmt.Println("  logout          Clear the stored session")
		fmt.Println("  whoami          Show the stored session and guard decision")
		fmt.Println("  call PATH       Issue an authenticated GET against the backend")
		fmt.Println("  version         Print the version")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "login":
		err = runLogin(ctx)
	case "register":
		err = runRegister(ctx)
	case "logout":
		err = runLogout()
	case "whoami":
		err = runWhoami()
	case "call":
		err = runCall(ctx)
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)
	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func gatewayConfig(cfg *config.Config) gateway.Config {
	return gateway.Config{
		BackendURL: cfg.Backend.BaseURL,
		RelayURL:   cfg.Backend.RelayURL,
		Prefix:     cfg.Relay.Prefix,
		Mode:       gateway.Mode(cfg.Backend.Mode),
	}
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.Storage.Path)
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Print(banner)
	fmt.Printf("session-gateway %s\n\n", version)

	var registry *prometheus.Registry
	var reg prometheus.Registerer
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		reg = registry
	}

	rl := relay.New(cfg.Backend.BaseURL, reg)

	root := chi.NewRouter()
	root.Mount(cfg.Relay.Prefix, rl.Routes())
	if registry != nil {
		root.Method(http.MethodGet, cfg.Metrics.Path,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	srv := &http.Server{
		Addr:    cfg.Relay.ListenAddr,
		Handler: root,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("relay listening",
			"addr", cfg.Relay.ListenAddr,
			"prefix", cfg.Relay.Prefix,
			"backend", cfg.Backend.BaseURL,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func runLogin(ctx context.Context) error {
	if len(os.Args) < 3 {
		return errors.New("usage: session-gateway login EMAIL")
	}
	email := os.Args[2]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	secret, err := prompt("Password: ")
	if err != nil {
		return err
	}

	sess, err := gateway.New(gatewayConfig(cfg), st).Login(ctx, email, secret)
	if err != nil {
		return err
	}

	color.Green("Logged in as %s <%s> (%s)", sess.DisplayName, sess.Email, sess.Role)
	return nil
}

func runRegister(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := gateway.Registration{}
	if reg.Name, err = prompt("Name: "); err != nil {
		return err
	}
	if reg.Email, err = prompt("Email: "); err != nil {
		return err
	}
	if reg.Secret, err = prompt("Password: "); err != nil {
		return err
	}
	if reg.Graduation, err = prompt("Graduation: "); err != nil {
		return err
	}
	role, err := prompt("Role [STUDENT]: ")
	if err != nil {
		return err
	}
	reg.Role = session.Role(strings.ToUpper(role))

	sess, err := gateway.New(gatewayConfig(cfg), st).Register(ctx, reg)
	if err != nil {
		return err
	}

	color.Green("Registered %s <%s> (%s)", sess.DisplayName, sess.Email, sess.Role)
	return nil
}

func runLogout() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Clear(); err != nil {
		return err
	}
	color.Yellow("Session cleared")
	return nil
}

func runWhoami() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	decision := guard.Decide(st)
	sess, err := st.Current()
	if err != nil {
		return err
	}

	if sess == nil || !sess.Authenticated() {
		color.Yellow("Not authenticated (guard: %s)", decision)
		return nil
	}

	fmt.Printf("ID:          %s\n", sess.ID)
	fmt.Printf("Name:        %s\n", sess.DisplayName)
	fmt.Printf("Email:       %s\n", sess.Email)
	if sess.Graduation != "" {
		fmt.Printf("Graduation:  %s\n", sess.Graduation)
	}
	fmt.Printf("Role:        %s\n", sess.Role)
	color.Green("Guard: %s", decision)
	return nil
}

func runCall(ctx context.Context) error {
	if len(os.Args) < 3 {
		return errors.New("usage: session-gateway call PATH")
	}
	path := os.Args[2]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	requester := client.New(gatewayConfig(cfg), st, nil)
	body, err := requester.Get(ctx, path)
	if errors.Is(err, client.ErrSessionExpired) {
		color.Yellow("Session expired; please log in again")
		return err
	}
	if err != nil {
		return err
	}

	var pretty any
	if json.Unmarshal(body, &pretty) == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
		return nil
	}
	fmt.Println(string(body))
	return nil
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
