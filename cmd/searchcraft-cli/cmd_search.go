package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/searchcraftinc/searchcraft-connect/client"
)

// searchFlags are shared by index and federated search.
type searchFlags struct {
	exact   bool
	raw     bool
	limit   int
	offset  int
	orderBy string
	sort    string
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.exact, "exact", false, "Exact instead of fuzzy matching")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "Treat the query argument as a JSON query object")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Max results")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "Offset")
	cmd.Flags().StringVar(&f.orderBy, "order-by", "", "Field to order by")
	cmd.Flags().StringVar(&f.sort, "sort", "", "Sort direction: asc|desc")
}

// build returns the query value and options for the search facades.
func (f *searchFlags) build(query string) (any, *client.SearchOptions, error) {
	if f.limit < 0 {
		return nil, nil, fmt.Errorf("--limit must be non-negative")
	}
	if f.offset < 0 {
		return nil, nil, fmt.Errorf("--offset must be non-negative")
	}
	if f.sort != "" && f.sort != "asc" && f.sort != "desc" {
		return nil, nil, fmt.Errorf("--sort must be asc or desc")
	}

	opts := &client.SearchOptions{
		Limit:   f.limit,
		Offset:  f.offset,
		OrderBy: f.orderBy,
		Sort:    f.sort,
	}
	if f.exact {
		opts.Mode = client.ModeExact
	}

	if !f.raw {
		return query, opts, nil
	}
	var q any
	if err := json.Unmarshal([]byte(query), &q); err != nil {
		return nil, nil, fmt.Errorf("parse --raw query: %w", err)
	}
	return q, opts, nil
}

func newSearchCmd() *cobra.Command {
	var flags searchFlags
	cmd := &cobra.Command{
		Use:   "search <index> <query>",
		Short: "Search an index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, opts, err := flags.build(args[1])
			if err != nil {
				return err
			}
			resp, err := apiClient.Search().Query(cmd.Context(), args[0], query, opts)
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), resp, "")
		},
	}
	flags.register(cmd)
	return cmd
}
