package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Version is the release string. Builds overwrite it via:
//
//	go build -ldflags "-X github.com/avinashkr148/Call-analyzer/cmd.Version=v0.3.0"
var Version = "v0.2.0"

// versionInfo is the structured payload for --format json|jsonl|yaml output.
type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	GOOS      string `json:"goos" yaml:"goos"`
	GOARCH    string `json:"goarch" yaml:"goarch"`
	BuildTime string `json:"build_time,omitempty" yaml:"build_time,omitempty"`
}

// BuildTime is optionally injected at build time alongside Version:
//
//	-ldflags "-X github.com/avinashkr148/Call-analyzer/cmd.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var BuildTime = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the callan version and build information",
	Long: `Print the callan version string and build metadata.

Default output is plain text. Use --format json, jsonl or yaml for
structured output.

Examples:
  callan version
  callan version --format json | jq .version`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{
			Version:   Version,
			GoVersion: runtime.Version(),
			GOOS:      runtime.GOOS,
			GOARCH:    runtime.GOARCH,
			BuildTime: BuildTime,
		}

		out := cmd.OutOrStdout()
		switch globalFlags.Format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)

		case "jsonl":
			return json.NewEncoder(out).Encode(info)

		case "yaml":
			enc := yaml.NewEncoder(out)
			defer enc.Close()
			return enc.Encode(info)

		default:
			fmt.Fprintf(out, "callan %s\n", info.Version)
			fmt.Fprintf(out, "go     %s\n", info.GoVersion)
			fmt.Fprintf(out, "os     %s/%s\n", info.GOOS, info.GOARCH)
			if info.BuildTime != "" {
				fmt.Fprintf(out, "built  %s\n", info.BuildTime)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
