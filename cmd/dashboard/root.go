package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arencloud/surveyboard/internal/dashboard"
	"github.com/arencloud/surveyboard/internal/errs"
	"github.com/arencloud/surveyboard/internal/logging"
)

var cfgFile string

// settings is the dashboard configuration after flags, env and file are merged.
type settings struct {
	APIURL string `mapstructure:"api_url"`
	Format string `mapstructure:"format"`
}

var rootCmd = &cobra.Command{
	Use:          "dashboard",
	Short:        "Terminal dashboard for the survey gateway",
	Long:         "Shows repository stats and the survey list served by the surveyboard gateway.",
	SilenceUsage: true,
	RunE:         runTUI,
}

func Execute(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	rootCmd.SetContext(ctx)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger := logging.NewWithWriter("cli", rootCmd.ErrOrStderr())
		logger.Error("command execution failed", "error", err)
		return errs.Wrap(err, "execute root command")
	}
	return nil
}

// loadSettings merges defaults, the optional config file, SURVEYBOARD_* env and flags.
func loadSettings(cmd *cobra.Command) (settings, error) {
	v := viper.New()
	v.SetDefault("api_url", dashboard.DefaultBaseURL)
	v.SetDefault("format", "json")

	v.SetEnvPrefix("SURVEYBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlag("api_url", cmd.Flag("api-url")); err != nil {
		return settings{}, errs.Wrap(err, "bind api-url flag")
	}
	if f := cmd.Flag("format"); f != nil {
		if err := v.BindPFlag("format", f); err != nil {
			return settings{}, errs.Wrap(err, "bind format flag")
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return settings{}, errs.Wrapf(err, "read config %s", cfgFile)
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, errs.Wrap(err, "unmarshal config")
	}
	return s, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("api-url", dashboard.DefaultBaseURL, "Gateway base URL including /api (env SURVEYBOARD_API_URL)")
}
