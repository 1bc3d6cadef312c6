package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/avinashkr148/Call-analyzer/internal/config"
	"github.com/avinashkr148/Call-analyzer/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage callan configuration",
	Long:  `Read and write callan configuration stored in config.json.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created %s\n", path)
		fmt.Fprintln(out, "  Parsing and reports work without it; set api_key to enable --insight.")
		return nil
	},
}

// ─── config get ───────────────────────────────────────────────────────────────

var configGetShowSecrets bool

// configOut is the structured form of `config get`.
type configOut struct {
	APIKey       string  `json:"api_key" yaml:"api_key"`
	Format       string  `json:"default_format" yaml:"default_format"`
	Timeout      string  `json:"timeout" yaml:"timeout"`
	Rate         float64 `json:"rate" yaml:"rate"`
	MaxRetries   int     `json:"max_retries" yaml:"max_retries"`
	InsightURL   string  `json:"insight_url" yaml:"insight_url"`
	InsightModel string  `json:"insight_model" yaml:"insight_model"`
	TopN         int     `json:"top_n" yaml:"top_n"`
	DBPath       string  `json:"db_path" yaml:"db_path"`
	ConfigFile   string  `json:"config_file" yaml:"config_file"`
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(globalFlags.APIKey)
		if err != nil {
			return err
		}

		apiKey := cfg.RedactedAPIKey()
		if configGetShowSecrets {
			apiKey = cfg.APIKey
		}
		if apiKey == "" {
			apiKey = "(not set)"
		}
		src := "(not found)"
		if cfg.ConfigPath != "" {
			src = cfg.ConfigPath
		}

		co := configOut{
			APIKey:       apiKey,
			Format:       cfg.Format,
			Timeout:      cfg.Timeout.String(),
			Rate:         cfg.Rate,
			MaxRetries:   cfg.MaxRetries,
			InsightURL:   cfg.InsightURL,
			InsightModel: cfg.InsightModel,
			TopN:         cfg.TopN,
			DBPath:       cfg.DBPath,
			ConfigFile:   src,
		}

		out := cmd.OutOrStdout()
		switch globalFlags.Format {
		case render.FormatJSON:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(co)
		case render.FormatYAML:
			enc := yaml.NewEncoder(out)
			defer enc.Close()
			return enc.Encode(co)
		default:
			printKVTableTo(out, [][]string{
				{"api_key", co.APIKey},
				{"default_format", co.Format},
				{"timeout", co.Timeout},
				{"rate", fmt.Sprintf("%.1f req/s", co.Rate)},
				{"max_retries", strconv.Itoa(co.MaxRetries)},
				{"insight_url", co.InsightURL},
				{"insight_model", co.InsightModel},
				{"top_n", strconv.Itoa(co.TopN)},
				{"db_path", co.DBPath},
				{"config_file", co.ConfigFile},
			})
			return nil
		}
	},
}

// ─── config set ───────────────────────────────────────────────────────────────

var configKeys = []string{
	"api_key", "default_format", "timeout", "rate", "max_retries",
	"insight_url", "insight_model", "top_n", "db_path",
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Set a configuration value in config.json",
	Args:      cobra.ExactArgs(2),
	ValidArgs: configKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		f := config.Template()
		existing, err := config.ReadFile(path)
		switch {
		case err == nil:
			f = *existing
		case !errors.Is(err, os.ErrNotExist):
			return err
		}

		key := strings.ToLower(args[0])
		if err := setConfigValue(&f, key, args[1]); err != nil {
			return err
		}
		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s in %s\n", key, path)
		return nil
	},
}

// setConfigValue validates val and stores it under key.
func setConfigValue(f *config.File, key, val string) error {
	switch key {
	case "api_key":
		f.APIKey = val
	case "default_format", "format":
		if !render.ValidFormat(val) {
			return fmt.Errorf("default_format must be one of: %s", strings.Join(render.Formats, ", "))
		}
		f.DefaultFormat = val
	case "timeout":
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("timeout must be a duration such as 30s or 2m")
		}
		f.Timeout = val
	case "rate":
		r, err := strconv.ParseFloat(val, 64)
		if err != nil || r <= 0 {
			return fmt.Errorf("rate must be a positive number")
		}
		f.Rate = r
	case "max_retries":
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return fmt.Errorf("max_retries must be a non-negative integer")
		}
		f.MaxRetries = n
	case "insight_url":
		f.InsightURL = strings.TrimRight(val, "/")
	case "insight_model":
		f.InsightModel = val
	case "top_n":
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return fmt.Errorf("top_n must be a positive integer")
		}
		f.TopN = n
	case "db_path":
		f.DBPath = val
	default:
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s", key, strings.Join(configKeys, ", "))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configGetCmd.Flags().BoolVar(&configGetShowSecrets, "show-secrets", false, "show API key in plain text")
}
