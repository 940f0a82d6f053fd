package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reelist/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Create or check the reelist configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	configCmd.AddCommand(newConfigInitCommand(ctx), newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	var opts config.SampleOptions
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration seeded with your data location",
		Long: "Write a sample configuration. --data-dir and --backend fill in the\n" +
			"[paths] and [user_data] sections so the watchlist and ratings land where you want them.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath, ctx.configPath())
			if err != nil {
				return err
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("check %s: %w", target, err)
				}
			}
			if opts.DataDir != "" {
				if opts.DataDir, err = config.ExpandPath(opts.DataDir); err != nil {
					return fmt.Errorf("resolve data dir: %w", err)
				}
			}
			if err := config.CreateSample(target, opts); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set [tmdb] api_key or export TMDB_API_KEY to browse the catalog.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "Directory for user data and logs")
	cmd.Flags().StringVar(&opts.Backend, "backend", config.BackendFile, "User data backend: file or sqlite")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// initTarget resolves where config init writes: --path, then --config, then
// the default location.
func initTarget(paths ...string) (string, error) {
	for _, candidate := range paths {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			return config.ExpandPath(candidate)
		}
	}
	return config.DefaultConfigPath()
}

type configReport struct {
	Path           string `json:"path"`
	FileFound      bool   `json:"file_found"`
	APIKeySet      bool   `json:"api_key_set"`
	BaseURL        string `json:"base_url"`
	ImageBaseURL   string `json:"image_base_url"`
	Language       string `json:"language"`
	CacheTTL       string `json:"cache_ttl"`
	RequestTimeout string `json:"request_timeout"`
	Backend        string `json:"user_data_backend"`
	UserDataPath   string `json:"user_data_path"`
	LogFile        string `json:"log_file"`
	Tracing        string `json:"tracing"`
}

func newConfigReport(cfg *config.Config, path string, exists bool) configReport {
	report := configReport{
		Path:           path,
		FileFound:      exists,
		APIKeySet:      cfg.TMDB.APIKey != "",
		BaseURL:        cfg.TMDB.BaseURL,
		ImageBaseURL:   cfg.TMDB.ImageBaseURL,
		Language:       cfg.TMDB.Language,
		CacheTTL:       cfg.CacheTTL().String(),
		RequestTimeout: "transport default",
		Backend:        cfg.UserData.Backend,
		UserDataPath:   cfg.UserData.Path,
		LogFile:        cfg.LogFilePath(),
		Tracing:        "disabled",
	}
	if timeout := cfg.RequestTimeout(); timeout > 0 {
		report.RequestTimeout = timeout.String()
	}
	if cfg.Telemetry.OTLPEndpoint != "" {
		report.Tracing = cfg.Telemetry.OTLPEndpoint
	}
	return report
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and show the settings reelist will use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return err
			}
			report := newConfigReport(cfg, path, exists)
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printConfigReport(cmd, report)
			}
			if err := cfg.RequireTMDBKey(); err != nil {
				return err
			}
			return cfg.EnsureDirectories()
		},
	}
}

func printConfigReport(cmd *cobra.Command, report configReport) {
	out := cmd.OutOrStdout()
	source := report.Path
	if !report.FileFound {
		source += " (not found, using defaults)"
	}
	apiKey := "set"
	if !report.APIKeySet {
		apiKey = "missing"
	}
	rows := [][]string{
		{"Config file", source},
		{"TMDB API key", apiKey},
		{"TMDB API", report.BaseURL},
		{"Image host", report.ImageBaseURL},
		{"Language", report.Language},
		{"Cache TTL", report.CacheTTL},
		{"Request timeout", report.RequestTimeout},
		{"User data", report.Backend + " at " + report.UserDataPath},
		{"Log file", report.LogFile},
		{"Tracing", report.Tracing},
	}
	fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil, terminalWidth(out)))
	if report.APIKeySet {
		fmt.Fprintln(out, "Configuration valid")
	} else {
		fmt.Fprintln(out, "Catalog commands need an API key; watchlist and rating commands work without one.")
	}
}
