package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/searchcraftinc/searchcraft-connect/client"
)

// Build-time variables set via ldflags.
var (
	version   = "0.4.0"
	commit    = ""
	buildDate = ""
)

var (
	apiClient    *client.Client
	flagEndpoint string
	flagKey      string
	flagKeyType  string
	flagProfile  string
	flagFmt      string
	flagTimeout  time.Duration
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("searchcraft version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("searchcraft version %s-dev", version)
}

// profileConfig holds connection settings for a single profile.
type profileConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	KeyType  string `yaml:"key_type,omitempty"`
}

// profilesFile is the top-level config file structure.
type profilesFile struct {
	Profiles      map[string]profileConfig `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "searchcraft",
		Short:             "Searchcraft CLI: manage indexes, documents and keys",
		Version:           versionString(),
		PersistentPreRunE: setupClient,
		SilenceUsage:      true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagEndpoint, "endpoint", "", "Searchcraft endpoint URL (env: SEARCHCRAFT_ENDPOINT)")
	pf.StringVar(&flagKey, "api-key", "", "API key (env: SEARCHCRAFT_API_KEY)")
	pf.StringVar(&flagKeyType, "key-type", "", "API key type: ingest|read|admin (env: SEARCHCRAFT_KEY_TYPE, default admin)")
	pf.StringVar(&flagProfile, "profile", "", "Config profile (env: SEARCHCRAFT_PROFILE)")
	pf.StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")
	pf.DurationVar(&flagTimeout, "timeout", 30*time.Second, "Request timeout")

	initCmd := newInitCmd()
	initCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error { return nil } // skip client setup
	doctorCmd := newDoctorCmd()
	doctorCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error { return nil } // skip client setup

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newDocumentsCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newFederationCmd())
	rootCmd.AddCommand(newKeysCmd())
	rootCmd.AddCommand(newStopwordsCmd())
	rootCmd.AddCommand(newSynonymsCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newRollbackCmd())

	return rootCmd
}

func setupClient(cmd *cobra.Command, args []string) error {
	switch flagFmt {
	case "json", "table", "quiet":
	default:
		return fmt.Errorf("invalid --format %q: must be json, table or quiet", flagFmt)
	}

	resolveConfig()
	if flagEndpoint == "" {
		return fmt.Errorf("no endpoint configured: set --endpoint, SEARCHCRAFT_ENDPOINT or run searchcraft init")
	}

	keyType, err := client.ParseKeyType(flagKeyType)
	if err != nil {
		return err
	}

	c, err := client.New(flagEndpoint, flagKey, keyType, client.WithTimeout(flagTimeout))
	if err != nil {
		return err
	}
	apiClient = c
	return nil
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".searchcraft", "config.yaml"), nil
}

func loadConfigFile() (string, *profilesFile, error) {
	cfgPath, err := configPath()
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return cfgPath, nil, err
	}
	var cfg profilesFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfgPath, nil, fmt.Errorf("parse %s: %w", cfgPath, err)
	}
	return cfgPath, &cfg, nil
}

// profileName picks the profile: flag, then env, then the file's active
// profile, then "default".
func profileName(cfg *profilesFile) string {
	if flagProfile != "" {
		return flagProfile
	}
	if v := os.Getenv("SEARCHCRAFT_PROFILE"); v != "" {
		return v
	}
	if cfg != nil && cfg.ActiveProfile != "" {
		return cfg.ActiveProfile
	}
	return "default"
}

// resolveConfig fills unset connection flags. Flags take precedence, then
// env, then the config file profile.
func resolveConfig() {
	if flagEndpoint == "" {
		flagEndpoint = os.Getenv("SEARCHCRAFT_ENDPOINT")
	}
	if flagKey == "" {
		flagKey = os.Getenv("SEARCHCRAFT_API_KEY")
	}
	if flagKeyType == "" {
		flagKeyType = os.Getenv("SEARCHCRAFT_KEY_TYPE")
	}

	if _, cfg, err := loadConfigFile(); err == nil {
		if p, ok := cfg.Profiles[profileName(cfg)]; ok {
			if flagEndpoint == "" {
				flagEndpoint = p.Endpoint
			}
			if flagKey == "" {
				flagKey = p.APIKey
			}
			if flagKeyType == "" {
				flagKeyType = p.KeyType
			}
		}
	}

	if flagKeyType == "" {
		flagKeyType = string(client.KeyTypeAdmin)
	}
}
