package main

import (
	"github.com/spf13/cobra"

	"github.com/searchcraftinc/searchcraft-connect/client"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys (admin key required)",
	}
	cmd.AddCommand(keysListCmd())
	cmd.AddCommand(keysGetCmd())
	cmd.AddCommand(keysCreateCmd())
	cmd.AddCommand(keysDeleteCmd())
	return cmd
}

func keysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Authentication().ListKeys(cmd.Context())
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "", "key", "name", "active")
		},
	}
}

func keysGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show one API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Authentication().GetKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, args[0])
		},
	}
}

func keysCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <json|@file|->",
		Short: "Create an API key from a JSON definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params client.Params
			if err := readJSON(args[0], cmd.InOrStdin(), &params); err != nil {
				return err
			}
			resp, err := apiClient.Authentication().CreateKey(cmd.Context(), params)
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "created")
		},
	}
}

func keysDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>...",
		Short: "Delete one or more API keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				resp client.Response
				err  error
			)
			if len(args) == 1 {
				resp, err = apiClient.Authentication().DeleteKey(cmd.Context(), args[0])
			} else {
				resp, err = apiClient.Authentication().DeleteKeys(cmd.Context(), args)
			}
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "deleted")
		},
	}
}
