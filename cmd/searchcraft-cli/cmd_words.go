package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/searchcraftinc/searchcraft-connect/client"
)

var (
	errAllWithWords = errors.New("--all cannot be combined with explicit entries")
	errNoWords      = errors.New("give at least one entry, or --all")
)

// wordService is the shape shared by the stopword and synonym facades.
type wordService interface {
	List(ctx context.Context, index string) (client.Response, error)
	Add(ctx context.Context, index string, words []string) (client.Response, error)
	Delete(ctx context.Context, index string, words []string) (client.Response, error)
	DeleteAll(ctx context.Context, index string) (client.Response, error)
}

func newStopwordsCmd() *cobra.Command {
	return newWordsCmd("stopwords", "stopword", "Manage index stopwords",
		func() wordService { return apiClient.Stopwords() })
}

func newSynonymsCmd() *cobra.Command {
	return newWordsCmd("synonyms", "synonym", "Manage index synonyms (entries like \"usa:united states\")",
		func() wordService { return apiClient.Synonyms() })
}

// newWordsCmd builds list/add/delete subcommands over svc. svc is resolved
// lazily because the client is created in the root pre-run hook.
func newWordsCmd(use, noun, short string, svc func() wordService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <index>",
		Short: "List " + use,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := svc().List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <index> <" + noun + ">...",
		Short: "Add " + use,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := svc().Add(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "added")
		},
	})

	var all bool
	del := &cobra.Command{
		Use:   "delete <index> [" + noun + "...]",
		Short: "Delete " + use + ", or all of them with --all",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				resp client.Response
				err  error
			)
			switch {
			case all && len(args) > 1:
				return errAllWithWords
			case all:
				resp, err = svc().DeleteAll(cmd.Context(), args[0])
			case len(args) == 1:
				return errNoWords
			default:
				resp, err = svc().Delete(cmd.Context(), args[0], args[1:])
			}
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "deleted")
		},
	}
	del.Flags().BoolVar(&all, "all", false, "Delete every entry")
	cmd.AddCommand(del)

	return cmd
}
