package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"shelfsync/internal/platform/net/http/bind"
	reviewsdomain "shelfsync/internal/services/reviews/domain"
	reviewsmod "shelfsync/internal/services/reviews/module"
)

var reviewsRefresh bool

var reviewsCmd = &cobra.Command{
	Use:   "reviews <bookId>",
	Short: "List reviews of a book, unconfirmed ones first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		svc := reviewsmod.New(e.deps).Service()
		l, err := svc.Load(cmd.Context(), args[0], reviewsRefresh)
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), l, func(w io.Writer) {
			if len(l.Reviews) == 0 {
				fmt.Fprintln(w, "no reviews yet")
				return
			}
			for _, r := range l.Reviews {
				printReview(w, r)
			}
			if l.Cached {
				fmt.Fprintln(w, "(cached)")
			}
		})
	},
}

var (
	reviewRating int
	reviewEmail  string
	reviewName   string
)

var reviewCmd = &cobra.Command{
	Use:     "review <bookId> <comment...>",
	Short:   "Post a review, kept locally until the server confirms it",
	Example: `  shelfsync review 42 "Loved the worldbuilding" --rating 5 --email me@example.com`,
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := reviewsdomain.SubmitInput{
			BookID:    args[0],
			Comment:   strings.Join(args[1:], " "),
			Rating:    reviewRating,
			UserEmail: reviewEmail,
			UserName:  reviewName,
		}
		if err := bind.Validate(in); err != nil {
			return err
		}

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		r, err := reviewsmod.New(e.deps).Service().Submit(cmd.Context(), in)
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), r, func(w io.Writer) { printReview(w, r) })
	},
}

func init() {
	reviewsCmd.Flags().BoolVar(&reviewsRefresh, "refresh", false, "ignore the cached list")

	reviewCmd.Flags().IntVar(&reviewRating, "rating", 5, "stars, 1 to 5")
	reviewCmd.Flags().StringVar(&reviewEmail, "email", "", "reviewer email")
	reviewCmd.Flags().StringVar(&reviewName, "name", "", "reviewer name")
}

func printReview(w io.Writer, r reviewsdomain.Review) {
	who := r.UserName
	if who == "" {
		who = r.UserEmail
	}
	if who == "" {
		who = "anonymous"
	}
	mark := ""
	if r.Pending {
		mark = " (pending)"
	}
	fmt.Fprintf(w, "%s %s%s\n  %s\n", strings.Repeat("*", r.Rating), who, mark, r.Comment)
}
