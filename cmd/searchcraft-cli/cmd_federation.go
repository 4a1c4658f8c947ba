package main

import (
	"github.com/spf13/cobra"
)

func newFederationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "federation",
		Short: "Manage and search federations",
	}
	cmd.AddCommand(federationListCmd())
	cmd.AddCommand(federationGetCmd())
	cmd.AddCommand(federationSearchCmd())
	cmd.AddCommand(federationDeleteCmd())
	return cmd
}

func federationListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List federations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Federation().List(cmd.Context())
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "", "name", "friendly_name")
		},
	}
}

func federationGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <federation>",
		Short: "Show a federation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Federation().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, args[0])
		},
	}
}

func federationSearchCmd() *cobra.Command {
	var flags searchFlags
	cmd := &cobra.Command{
		Use:   "search <federation> <query>",
		Short: "Search every index in a federation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, opts, err := flags.build(args[1])
			if err != nil {
				return err
			}
			resp, err := apiClient.Federation().Search(cmd.Context(), args[0], query, opts)
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "")
		},
	}
	flags.register(cmd)
	return cmd
}

func federationDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <federation>",
		Short: "Delete a federation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Federation().Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "deleted")
		},
	}
}
