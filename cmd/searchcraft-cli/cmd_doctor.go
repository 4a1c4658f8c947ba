package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/searchcraftinc/searchcraft-connect/client"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		Long:  "Run diagnostic checks against config, cluster health and key scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.OutOrStdout())
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func runDoctor(out io.Writer) error {
	fmt.Fprintln(out, "\nSearchcraft Doctor")
	fmt.Fprintln(out, "==================")

	var results []checkResult

	// 1. Config file.
	cfgPath, _, cfgErr := loadConfigFile()
	if cfgErr != nil {
		results = append(results, checkResult{
			Name: "Config file", Passed: false,
			Detail: cfgPath,
			Hint:   "Run: searchcraft init",
		})
	} else {
		results = append(results, checkResult{
			Name: "Config file", Passed: true,
			Detail: fmt.Sprintf("found (%s)", cfgPath),
		})
	}

	// Same precedence as every other command.
	resolveConfig()

	// 2. Endpoint.
	if flagEndpoint == "" {
		results = append(results, checkResult{
			Name: "Endpoint", Passed: false,
			Hint: "Set --endpoint, SEARCHCRAFT_ENDPOINT, or run searchcraft init",
		})
	} else {
		results = append(results, checkResult{Name: "Endpoint", Passed: true, Detail: flagEndpoint})
	}

	// 3. API key and type.
	keyType, keyTypeErr := client.ParseKeyType(flagKeyType)
	switch {
	case flagKey == "":
		results = append(results, checkResult{
			Name: "API key", Passed: false,
			Hint: "Set --api-key, SEARCHCRAFT_API_KEY, or run searchcraft init",
		})
	case keyTypeErr != nil:
		results = append(results, checkResult{
			Name: "API key", Passed: false,
			Detail: keyTypeErr.Error(),
			Hint:   "Key type must be ingest, read or admin",
		})
	default:
		results = append(results, checkResult{
			Name: "API key", Passed: true, Detail: fmt.Sprintf("configured (%s)", keyType),
		})
	}

	// 4. Cluster health and 5. key scope.
	if flagEndpoint != "" && keyTypeErr == nil {
		c, err := client.New(flagEndpoint, flagKey, keyType, client.WithTimeout(5*time.Second))
		if err != nil {
			return err
		}
		results = append(results, doctorCheckHealth(c))
		if flagKey != "" {
			results = append(results, doctorCheckAuth(c))
		}
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, r := range results {
		mark := "✅"
		if !r.Passed {
			mark = "❌"
			allPassed = false
		}
		if r.Detail != "" {
			fmt.Fprintf(out, "%s %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Fprintf(out, "%s %s\n", mark, r.Name)
		}
		if !r.Passed && r.Hint != "" {
			fmt.Fprintf(out, "   Hint: %s\n", r.Hint)
		}
	}

	fmt.Fprintln(out)
	if !allPassed {
		fmt.Fprintln(out, "❌ Some checks failed.")
		return fmt.Errorf("doctor found issues")
	}
	fmt.Fprintln(out, "✅ All checks passed!")
	return nil
}

func doctorCheckHealth(c *client.Client) checkResult {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := c.Healthcheck().Check(ctx)
	if err != nil {
		return checkResult{
			Name: "Cluster reachable", Passed: false,
			Detail: c.Endpoint(),
			Hint:   fmt.Sprintf("Check the endpoint URL and network access.\n   Error: %v", err),
		}
	}
	detail := c.Endpoint()
	if msg, ok := resp.Data().(string); ok && msg != "" {
		detail = msg
	}
	return checkResult{Name: "Cluster reachable", Passed: true, Detail: detail}
}

// doctorCheckAuth exercises an endpoint the key's scope allows. Only admin
// keys can list keys; other scopes can list indexes.
func doctorCheckAuth(c *client.Client) checkResult {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if c.KeyType() == client.KeyTypeAdmin {
		_, err = c.Authentication().ListKeys(ctx)
	} else {
		_, err = c.Index().List(ctx)
	}

	switch {
	case err == nil:
		return checkResult{Name: "Authentication", Passed: true, Detail: "valid"}
	case client.IsUnauthorized(err):
		return checkResult{
			Name: "Authentication", Passed: false,
			Hint: fmt.Sprintf("The key was rejected; check the key and its type. Error: %v", err),
		}
	default:
		return checkResult{
			Name: "Authentication", Passed: false,
			Hint: fmt.Sprintf("Unexpected error: %v", err),
		}
	}
}
