package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"shelfsync/internal/platform/net/http/bind"
	tbrdomain "shelfsync/internal/services/tbr/domain"
	tbrmod "shelfsync/internal/services/tbr/module"
	tbrsvc "shelfsync/internal/services/tbr/service"
)

var tbrCmd = &cobra.Command{
	Use:   "tbr",
	Short: "Manage the to-be-read list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withTBR(cmd, func(svc *tbrsvc.Service) error {
			list, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), list, func(w io.Writer) {
				if len(list) == 0 {
					fmt.Fprintln(w, "to-be-read list is empty")
					return
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tADDED")
				for _, en := range list {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", en.ID, clip(en.Title, 48), clip(en.Author, 28), en.AddedAt.Format("2006-01-02"))
				}
				_ = tw.Flush()
			})
		})
	},
}

var tbrAddIn tbrdomain.AddInput

var tbrAddCmd = &cobra.Command{
	Use:   "add <bookId>",
	Short: "Put a book on the list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := tbrAddIn
		in.ID = args[0]
		if err := bind.Validate(in); err != nil {
			return err
		}
		return withTBR(cmd, func(svc *tbrsvc.Service) error {
			added, err := svc.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), map[string]bool{"added": added}, func(w io.Writer) {
				if added {
					fmt.Fprintf(w, "added %s\n", in.ID)
				} else {
					fmt.Fprintf(w, "%s is already on the list\n", in.ID)
				}
			})
		})
	},
}

var tbrRemoveCmd = &cobra.Command{
	Use:     "rm <bookId>",
	Aliases: []string{"remove"},
	Short:   "Take a book off the list",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTBR(cmd, func(svc *tbrsvc.Service) error {
			rm, err := svc.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), rm, func(w io.Writer) {
				fmt.Fprintf(w, "removed %s, undo with: shelfsync tbr restore %s\n", rm.Entry.ID, rm.Entry.ID)
			})
		})
	},
}

var tbrRestoreCmd = &cobra.Command{
	Use:   "restore <bookId>",
	Short: "Undo the last removal of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTBR(cmd, func(svc *tbrsvc.Service) error {
			ok, err := svc.Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), map[string]bool{"restored": ok}, func(w io.Writer) {
				if ok {
					fmt.Fprintf(w, "restored %s\n", args[0])
				} else {
					fmt.Fprintf(w, "nothing to restore for %s\n", args[0])
				}
			})
		})
	},
}

var tbrClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withTBR(cmd, func(svc *tbrsvc.Service) error {
			n, err := svc.Clear(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), map[string]int{"removed": n}, func(w io.Writer) {
				fmt.Fprintf(w, "removed %d books\n", n)
			})
		})
	},
}

func init() {
	tbrAddCmd.Flags().StringVar(&tbrAddIn.Title, "title", "", "book title")
	tbrAddCmd.Flags().StringVar(&tbrAddIn.Author, "author", "", "book author")
	tbrAddCmd.Flags().StringVar(&tbrAddIn.ImageURL, "image", "", "cover image url")

	tbrCmd.AddCommand(tbrAddCmd, tbrRemoveCmd, tbrRestoreCmd, tbrClearCmd)
}

func withTBR(cmd *cobra.Command, fn func(*tbrsvc.Service) error) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(tbrmod.New(e.deps).Service())
}
