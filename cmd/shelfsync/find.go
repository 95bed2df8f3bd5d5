package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"shelfsync/internal/platform/net/http/bind"
	discoverydomain "shelfsync/internal/services/discovery/domain"
	discoverymod "shelfsync/internal/services/discovery/module"
)

var (
	findLimit   int
	findRemote  bool
	findSuggest bool
)

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Search the local index, falling back to the server",
	Example: `  shelfsync find dune
  shelfsync find "left hand of darkness" --remote
  shelfsync find ear --suggest`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		m := discoverymod.New(e.deps)
		defer m.Close()
		svc := m.Service()
		q := strings.Join(args, " ")

		if findSuggest {
			in := discoverydomain.SuggestInput{Prefix: q, Limit: findLimit}
			if err := bind.Validate(in); err != nil {
				return err
			}
			words := svc.Suggest(in)
			return emit(cmd.OutOrStdout(), words, func(w io.Writer) {
				for _, s := range words {
					fmt.Fprintln(w, s)
				}
			})
		}

		in := discoverydomain.SearchInput{Query: q, Limit: findLimit, Remote: findRemote}
		if err := bind.Validate(in); err != nil {
			return err
		}
		res, err := svc.Search(cmd.Context(), in)
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), res, func(w io.Writer) {
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCORE\tID\tTITLE\tAUTHOR")
			for _, r := range res.Results {
				fmt.Fprintf(tw, "%.1f\t%s\t%s\t%s\n", r.Score, r.Record.ID, clip(r.Record.Title, 48), clip(r.Record.Author, 28))
			}
			_ = tw.Flush()
			fmt.Fprintf(w, "\n%d results from %s\n", len(res.Results), res.Origin)
		})
	},
}

func init() {
	findCmd.Flags().IntVar(&findLimit, "limit", 0, "maximum results, 0 uses DISCOVERY_LIMIT")
	findCmd.Flags().BoolVar(&findRemote, "remote", false, "skip the local index")
	findCmd.Flags().BoolVar(&findSuggest, "suggest", false, "complete the last word instead of searching")
}
