package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/docket/internal/model"
)

const version = "docket v0.1.0"

var (
	cfgFile     string
	verbose     bool
	noCache     bool
	llmProvider string
	llmModel    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "docket",
	Short: "docket - court document reconciliation and eligibility intake",
	Long: `docket turns court paperwork and a guided intake conversation into
structured data for an eligibility review.

It merges the fields extracted from a summons, a sentencing order and a
police report into one case record, records intake sessions, types the
answers given in them, and can ask an eligibility oracle for a verdict.

docket does not give legal advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.docket/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&noCache, "no-cache", false, "disable the oracle result cache")
	flags.StringVar(&llmProvider, "llm-provider", "", "oracle provider (openai, ollama)")
	flags.StringVar(&llmModel, "llm-model", "", "oracle model name")

	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("llm.provider", flags.Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.model", flags.Lookup("llm-model"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := setDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering config defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".docket"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// DOCKET_LLM_MODEL -> llm.model
	viper.SetEnvPrefix("DOCKET")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("llm.api_key", "DOCKET_LLM_API_KEY", "OPENAI_API_KEY")
	_ = viper.BindEnv("llm.base_url", "DOCKET_LLM_BASE_URL", "OPENAI_BASE_URL")

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key of cfg with viper so that environment
// variables and Unmarshal see the full key set
func setDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}

	for section, values := range tree {
		fields, ok := values.(map[string]any)
		if !ok {
			viper.SetDefault(section, values)
			continue
		}
		for key, val := range fields {
			viper.SetDefault(section+"."+key, val)
		}
	}

	// omitted from YAML but still configurable
	for _, key := range []string{"llm.api_key", "llm.base_url", "llm.http_proxy", "llm.https_proxy"} {
		viper.SetDefault(key, "")
	}
	return nil
}

// loadConfig builds the effective configuration:
// flags > environment > config file > defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

// newLogger builds the stderr logger: warnings by default, everything
// with --verbose
func newLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zcfg.DisableStacktrace = true
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// progressf prints a progress line to stderr when running verbose
func progressf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
