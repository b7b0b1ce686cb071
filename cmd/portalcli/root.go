package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/apiclient"
	"visa-advisory-portal/internal/logger"
)

var rootFlags struct {
	apiURL    string
	configDir string
	logLevel  string
}

var rootCmd = &cobra.Command{
	Use:   "portalcli",
	Short: "Client for the visa advisory portal",
	Long:  "portalcli signs in to the portal API, uploads documents against the\nrequired checklist and fills in the intake form step by step.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.apiURL, "api", envOr("PORTAL_API_URL", "http://localhost:8080/api/v1"), "API base URL including the version prefix")
	f.StringVar(&rootFlags.configDir, "config-dir", "", "Directory for remembered credentials (default: user config dir)")
	f.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(checklistCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(formCmd)
	rootCmd.AddCommand(adminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func newLogger() (*zap.Logger, error) {
	return logger.New(config.LogConfig{Level: rootFlags.logLevel, Format: "console", Development: true})
}

// newSession : session scope lives in the temp dir until reboot, persistent scope in the config dir
func newSession() (*apiclient.Session, error) {
	dir := rootFlags.configDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		dir = filepath.Join(base, "visa-portal")
	}

	sessionPath := filepath.Join(os.TempDir(), "visa-portal-"+strconv.Itoa(os.Getuid()), "session.json")
	return apiclient.NewSession(
		apiclient.NewFileStore(sessionPath),
		apiclient.NewFileStore(filepath.Join(dir, "credentials.json")),
	), nil
}

func newClient() (*apiclient.Client, *zap.Logger, error) {
	log, err := newLogger()
	if err != nil {
		return nil, nil, err
	}
	session, err := newSession()
	if err != nil {
		return nil, nil, err
	}
	return apiclient.New(rootFlags.apiURL, session, apiclient.WithLogger(log)), log, nil
}
