package main

import (
	"github.com/spf13/cobra"

	"github.com/searchcraftinc/searchcraft-connect/client"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the Searchcraft cluster health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Healthcheck().Check(cmd.Context())
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "ok")
		},
	}
}

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage indexes",
	}
	cmd.AddCommand(indexListCmd())
	cmd.AddCommand(indexGetCmd())
	cmd.AddCommand(indexStatsCmd())
	cmd.AddCommand(indexCreateCmd())
	cmd.AddCommand(indexDeleteCmd())
	return cmd
}

func indexListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Index().List(cmd.Context())
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "")
		},
	}
}

func indexGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <index>",
		Short: "Show an index schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Index().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, args[0])
		},
	}
}

func indexStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <index>",
		Short: "Show index statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Index().Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, args[0])
		},
	}
}

func indexCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <schema-json|@file|->",
		Short: "Create an index from a JSON schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params client.Params
			if err := readJSON(args[0], cmd.InOrStdin(), &params); err != nil {
				return err
			}
			resp, err := apiClient.Index().Create(cmd.Context(), params)
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "created")
		},
	}
}

func indexDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Index().Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "deleted")
		},
	}
}

func newCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit <index>",
		Short: "Commit pending writes to an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Transactions().Commit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "committed")
		},
	}
}

func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <index>",
		Short: "Discard pending writes to an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Transactions().Rollback(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "rolled back")
		},
	}
}
