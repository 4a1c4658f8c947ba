package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/searchcraftinc/searchcraft-connect/client"
)

func newInitCmd() *cobra.Command {
	var skipCheck bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up Searchcraft CLI configuration",
		Long:  "Interactive setup wizard that writes a profile to ~/.searchcraft/config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			nonInteractive := flagEndpoint != "" || flagKey != ""
			p := profileConfig{Endpoint: flagEndpoint, APIKey: flagKey, KeyType: flagKeyType}
			_, existing, _ := loadConfigFile()
			return runInit(cmd.InOrStdin(), cmd.OutOrStdout(), p, profileName(existing), nonInteractive, skipCheck)
		},
	}

	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "Save without testing the connection")
	return cmd
}

func runInit(in io.Reader, out io.Writer, p profileConfig, profile string, nonInteractive, skipCheck bool) error {
	if !nonInteractive {
		fmt.Fprintln(out, "\n  Searchcraft Setup")
		fmt.Fprintln(out, "  ─────────────────")
		fmt.Fprintln(out)

		reader := bufio.NewReader(in)
		p.Endpoint = prompt(reader, out, "Endpoint URL", p.Endpoint)
		p.APIKey = prompt(reader, out, "API Key", p.APIKey)
		p.KeyType = prompt(reader, out, "Key type (ingest|read|admin)", orDefault(p.KeyType, "admin"))
	}

	p.Endpoint = strings.TrimRight(strings.TrimSpace(p.Endpoint), "/")
	p.KeyType = orDefault(p.KeyType, string(client.KeyTypeAdmin))

	if p.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if p.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	keyType, err := client.ParseKeyType(p.KeyType)
	if err != nil {
		return err
	}

	if !skipCheck {
		if !nonInteractive {
			fmt.Fprint(out, "\n  Testing connection... ")
		}
		if err := testConnection(p.Endpoint, p.APIKey, keyType); err != nil {
			if !nonInteractive {
				fmt.Fprintln(out, "✗")
			}
			return fmt.Errorf("connection failed: %w", err)
		}
		if !nonInteractive {
			fmt.Fprintln(out, "✓ Connected")
		}
	}

	cfgPath, err := writeConfig(profile, p)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if nonInteractive {
		fmt.Fprintf(out, "Config saved to %s\n", cfgPath)
		return nil
	}

	fmt.Fprintf(out, "\n  ✓ Config saved to %s (profile %q)\n", cfgPath, profile)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Next steps:")
	fmt.Fprintln(out, "    searchcraft doctor       # Full diagnostic check")
	fmt.Fprintln(out, "    searchcraft index list   # See your indexes")
	fmt.Fprintln(out, "    searchcraft --help       # See all commands")
	fmt.Fprintln(out)
	return nil
}

func prompt(r *bufio.Reader, out io.Writer, label, def string) string {
	if def != "" {
		fmt.Fprintf(out, "  %s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "  %s: ", label)
	}
	line, _ := r.ReadString('\n')
	if line = strings.TrimSpace(line); line != "" {
		return line
	}
	return def
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func testConnection(endpoint, apiKey string, keyType client.KeyType) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := client.New(endpoint, apiKey, keyType)
	if err != nil {
		return err
	}
	_, err = c.Healthcheck().Check(ctx)
	return err
}

// writeConfig stores p under profile, keeping other profiles, and makes it
// the active profile.
func writeConfig(profile string, p profileConfig) (string, error) {
	cfgPath, cfg, err := loadConfigFile()
	if os.IsNotExist(err) {
		cfg, err = &profilesFile{}, nil
	}
	if err != nil {
		return "", err
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]profileConfig{}
	}
	cfg.Profiles[profile] = p
	cfg.ActiveProfile = profile

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o700); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		return "", err
	}
	return cfgPath, nil
}
