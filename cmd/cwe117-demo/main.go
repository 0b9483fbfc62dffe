package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/al-bashkir/cwe117-demo/internal/config"
	"github.com/al-bashkir/cwe117-demo/internal/daemon"
	"github.com/al-bashkir/cwe117-demo/internal/logsanitize"
)

// Version information (set via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Global flags
var (
	configFile string
	logLevel   string
	logFormat  string
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitConfig  = 3
)

var rootCmd = &cobra.Command{
	Use:   "cwe117-demo",
	Short: "Log injection (CWE-117) mitigation demo",
	Long: `HTTP service demonstrating CWE-117 (log injection) mitigation.

User-supplied data accepted by the API is logged only after newline,
carriage return and tab characters have been escaped, so a request can
never forge additional log entries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Long: `Start the HTTP service.

Endpoints:
  POST /api/test  Log the JSON payload (sanitized) and echo it back
  GET  /health    Health check

A missing configuration file is not an error; defaults are used.`,
	RunE: runServe,
}

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [text...]",
	Short: "Escape text for safe inclusion in a log line",
	Long: `Print the arguments, joined by spaces, with newline, carriage return
and tab escaped as \n, \r and \t. With no arguments, standard input is
read and sanitized as a whole.`,
	RunE: runSanitize,
}

// overrideExitCode is set by subcommands (check-config) so main() can
// call os.Exit() after cobra finishes.  -1 means "use default".
var overrideExitCode = -1

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  `Display version, commit hash, and build date.`,
	Run:   runVersion,
}

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate configuration file",
	Long: `Load and validate the configuration file without starting the service.

Exit codes:
  0 = Configuration is valid
  3 = Configuration error`,
	RunE: runCheckConfig,
}

func init() {
	// Global flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "/etc/cwe117-demo/config.yaml",
		"Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error) - overrides config file")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Log format (json, text) - overrides config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sanitizeCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}

	if overrideExitCode >= 0 {
		os.Exit(overrideExitCode)
	}
}

// runServe starts the daemon
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	logger := config.SetupLogging(&cfg.Log)

	logger.Info("starting cwe117-demo",
		"version", version,
		"commit", commit,
		"build_date", buildDate,
		"config", configFile,
	)

	return daemon.New(cfg, logger, version).Run(context.Background())
}

// runSanitize prints its input with log-breaking characters escaped
func runSanitize(cmd *cobra.Command, args []string) error {
	return sanitizeTo(cmd.OutOrStdout(), cmd.InOrStdin(), args)
}

func sanitizeTo(out io.Writer, in io.Reader, args []string) error {
	var text string
	if len(args) > 0 {
		text = strings.Join(args, " ")
	} else {
		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		text = string(data)
	}

	if _, err := fmt.Fprintln(out, logsanitize.Sanitize(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// runVersion displays version information
func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("cwe117-demo version %s\n", version)
	fmt.Printf("  Commit:     %s\n", commit)
	fmt.Printf("  Build date: %s\n", buildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// runCheckConfig validates the configuration
func runCheckConfig(cmd *cobra.Command, args []string) error {
	fmt.Printf("Checking configuration: %s\n\n", configFile)

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration validation failed:\n")
		fmt.Fprintf(os.Stderr, "   %v\n", err)
		overrideExitCode = ExitConfig
		return nil // exit code handled via overrideExitCode
	}

	fmt.Println("✅ Configuration is valid")
	fmt.Println()
	fmt.Println("Configuration summary:")
	fmt.Printf("  HTTP Listen:     %s\n", cfg.Listen.HTTP)
	fmt.Printf("  Max Body Bytes:  %d\n", cfg.Server.MaxBodyBytes)
	fmt.Printf("  Rate Limit:      %v (%.1f req/s, burst %d)\n",
		cfg.RateLimit.Enabled, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	fmt.Printf("  Log Level:       %s\n", cfg.Log.Level)
	fmt.Printf("  Log Format:      %s\n", cfg.Log.Format)
	fmt.Printf("  TLS Enabled:     %v\n", cfg.TLS.Enabled)

	return nil
}
