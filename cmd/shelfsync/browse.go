package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"shelfsync/internal/core/book"
	catalogdomain "shelfsync/internal/services/catalog/domain"
	catalogmod "shelfsync/internal/services/catalog/module"
)

var (
	browsePage   int
	browseQuery  string
	browseGenres []string
	browseBook   string
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Show one catalog page, or one book with --book",
	Example: `  shelfsync browse --page 2
  shelfsync browse --q dune
  shelfsync browse --genre fantasy --genre "science fiction"
  shelfsync browse --book 42 -o json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		o := catalogmod.FromConfig(e.cfg)
		o.PrefetchPages = 0
		m := catalogmod.NewWithOptions(e.deps, o)
		defer m.Close()
		svc := m.Service()

		if browseBook != "" {
			d, err := svc.Book(cmd.Context(), browseBook)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), d, func(w io.Writer) { printDetail(w, d) })
		}

		in := catalogdomain.LoadInput{Page: browsePage, Query: browseQuery}
		if len(browseGenres) > 0 {
			in.Filters = map[string][]string{"genre": browseGenres}
		}
		res, err := svc.LoadPage(cmd.Context(), in)
		if err != nil {
			return err
		}
		st := svc.State()
		return emit(cmd.OutOrStdout(), struct {
			Result catalogdomain.PageResult `json:"result"`
			State  catalogdomain.State      `json:"state"`
		}{res, st}, func(w io.Writer) {
			printRecords(w, res.Items)
			total := "unknown"
			if res.Total != nil {
				total = fmt.Sprint(*res.Total)
			}
			fmt.Fprintf(w, "\npage %d, total %s, more %v\n", st.Page, total, st.HasMore)
			if st.Fallback {
				fmt.Fprintln(w, "server unreachable, showing sample books")
			}
		})
	},
}

func init() {
	browseCmd.Flags().IntVar(&browsePage, "page", 1, "page number")
	browseCmd.Flags().StringVar(&browseQuery, "q", "", "server side search query")
	browseCmd.Flags().StringArrayVar(&browseGenres, "genre", nil, "genre filter, repeatable")
	browseCmd.Flags().StringVar(&browseBook, "book", "", "show the detail of one book id")
}

func printRecords(w io.Writer, recs []book.Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tGENRE")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, clip(r.Title, 48), clip(r.Author, 28), strings.Join(r.Genre, ", "))
	}
	_ = tw.Flush()
}

func printDetail(w io.Writer, d book.Detail) {
	fmt.Fprintf(w, "%s\n  by %s\n", d.Title, d.Author)
	for _, kv := range [][2]string{
		{"id", d.ID},
		{"publisher", d.Publisher},
		{"published", d.PublishedDate},
		{"isbn", d.ISBN},
		{"language", d.Language},
		{"genre", strings.Join(d.Genre, ", ")},
	} {
		if kv[1] != "" {
			fmt.Fprintf(w, "  %-10s %s\n", kv[0], kv[1])
		}
	}
	if d.PageCount > 0 {
		fmt.Fprintf(w, "  %-10s %d\n", "pages", d.PageCount)
	}
	if d.Description != "" {
		fmt.Fprintf(w, "\n%s\n", d.Description)
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
