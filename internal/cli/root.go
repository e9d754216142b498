// Package cli implements the jobfacts command line.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/config"
)

// Version is set at build time.
var Version = "v0.3.0"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "jobfacts",
	Short: "Extract structured facts from information security job postings",
	Long: `jobfacts filters job postings down to information security roles and
extracts salary, education, employment type, location, certifications and
experience requirements from the remaining ones.

Postings are read from a JSONL file, a JSON file or a directory of JSON
files. Titles and bodies may contain HTML.`,
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
		fmt.Fprintf(cmd.OutOrStdout(), "jobfacts %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := config.Default()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.jobfacts/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("rules", "", "rule table (YAML); empty uses the built-in rules")
	flags.String("stoplist", "", "stopword file (YAML); empty uses the built-in list")
	flags.String("cities", "", "city to state table (JSON or YAML)")
	flags.String("certifications", "", "certification table (JSON or YAML)")
	flags.StringSlice("languages", defaults.Languages, "ISO 639-1 codes language detection may report")
	flags.Float64("language-min-confidence", defaults.LanguageMinConfidence, "drop language guesses below this confidence (0..1)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("data.rules", flags.Lookup("rules"))
	_ = viper.BindPFlag("data.stoplist", flags.Lookup("stoplist"))
	_ = viper.BindPFlag("data.cities", flags.Lookup("cities"))
	_ = viper.BindPFlag("data.certifications", flags.Lookup("certifications"))
	_ = viper.BindPFlag("languages", flags.Lookup("languages"))
	_ = viper.BindPFlag("language_min_confidence", flags.Lookup("language-min-confidence"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.jobfacts")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// JOBFACTS_WORKERS, JOBFACTS_OUTPUT_FORMAT, ...
	viper.SetEnvPrefix("JOBFACTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, config file, environment and flags.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}
