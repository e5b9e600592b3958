package main

import (
	"github.com/indigo-web/staticd/config"
	"github.com/indigo-web/staticd/http/mime"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

// configJSON renders the config under the same keys it is read with.
var configJSON = jsoniter.Config{
	TagKey:        "mapstructure",
	IndentionStep: 2,
	SortMapKeys:   true,
}.Froze()

// effectiveConfig brings back the policy section, which is skipped by the
// mapstructure tag of Config.
type effectiveConfig struct {
	*config.Config
	Policy map[string]mime.Policy `mapstructure:"policy"`
}

func newConfigCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config [DIRECTORY]",
		Short: "Print the effective configuration as JSON",
		Long: `Print the configuration the server would run with, after merging defaults,
the config file, environment variables and flags. Durations are in nanoseconds.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configPath, args)
			if err != nil {
				return reportError(cmd, err)
			}

			data, err := configJSON.Marshal(effectiveConfig{Config: cfg, Policy: cfg.Policy})
			if err != nil {
				return reportError(cmd, err)
			}

			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}
}
