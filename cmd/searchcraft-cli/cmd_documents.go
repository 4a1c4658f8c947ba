package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newDocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "Add, fetch and remove documents",
	}
	cmd.AddCommand(documentsAddCmd())
	cmd.AddCommand(documentsGetCmd())
	cmd.AddCommand(documentsDeleteCmd())
	cmd.AddCommand(documentsDeleteAllCmd())
	return cmd
}

func documentsAddCmd() *cobra.Command {
	var commit bool
	cmd := &cobra.Command{
		Use:   "add <index> <json|@file|->",
		Short: "Add one document or an array of documents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readDocuments(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			resp, err := apiClient.Documents().Add(cmd.Context(), args[0], docs)
			if err != nil {
				return err
			}
			if commit {
				if resp, err = apiClient.Transactions().Commit(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("documents added but commit failed: %w", err)
				}
			}
			return output(cmd.OutOrStdout(), resp, strconv.Itoa(len(docs)))
		},
	}
	cmd.Flags().BoolVar(&commit, "commit", false, "Commit the index after adding")
	return cmd
}

func documentsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <index> <internal-id>",
		Short: "Get a document by its internal id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Documents().Get(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, args[1])
		},
	}
}

func documentsDeleteCmd() *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "delete <index> <id>...",
		Short: "Delete documents by id, or by field value with --field",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, values := args[0], args[1:]

			if field != "" {
				if len(values) != 1 {
					return fmt.Errorf("--field takes exactly one value")
				}
				criteria := map[string]any{"term": map[string]any{field: values[0]}}
				resp, err := apiClient.Documents().DeleteByField(cmd.Context(), index, criteria)
				if err != nil {
					return err
				}
				return output(cmd.OutOrStdout(), resp, "deleted")
			}

			resp, err := apiClient.Documents().Delete(cmd.Context(), index, values)
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "deleted")
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "Delete documents whose field equals the given value")
	return cmd
}

func documentsDeleteAllCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete-all <index>",
		Short: "Delete every document in an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all documents in %q without --yes", args[0])
			}
			resp, err := apiClient.Documents().DeleteAll(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "deleted")
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
