package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/unowned-ai/daybook/pkg/export"
	"github.com/unowned-ai/daybook/pkg/journal"
)

var entriesCmd = &cobra.Command{
	Use:     "entries",
	Aliases: []string{"entry", "e"},
	Short:   "Write, read and search journal entries",
}

var entriesWriteCmd = &cobra.Command{
	Use:   "write [entry-id]",
	Short: "Create or update an entry (today's when no ID is given)",
	Long: `Writes a journal entry. Without an ID, today's entry is created or updated;
every user has at most one entry per calendar day. Content comes from
--content, or from stdin when --content is "-".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := fieldsFromFlags(cmd)
		if err != nil {
			return err
		}
		tagsRaw, _ := cmd.Flags().GetString("tags")
		tags := splitTags(tagsRaw)

		return withUnlockedApp(cmd, func(a *app) error {
			var id *uuid.UUID
			if len(args) == 1 {
				parsed, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid entry ID %q: %w", args[0], err)
				}
				id = &parsed
			}

			ok, err := a.journal.Upsert(cmd.Context(), id, fields, tags)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("entry %s not found", args[0])
			}

			var e *journal.Entry
			if id != nil {
				e, err = a.journal.Get(cmd.Context(), *id)
			} else {
				e, err = a.journal.GetToday(cmd.Context())
			}
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), e)
			}
			cmd.Printf("Saved entry for %s (%s).\n", e.EntryDate.Format(journal.DateLayout), e.ID)
			return nil
		})
	},
}

var entriesGetCmd = &cobra.Command{
	Use:   "get [entry-id]",
	Short: "Show an entry (today's when no ID is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUnlockedApp(cmd, func(a *app) error {
			var (
				e   *journal.Entry
				err error
			)
			if len(args) == 1 {
				id, perr := uuid.Parse(args[0])
				if perr != nil {
					return fmt.Errorf("invalid entry ID %q: %w", args[0], perr)
				}
				e, err = a.journal.Get(cmd.Context(), id)
			} else {
				e, err = a.journal.GetToday(cmd.Context())
			}
			if err != nil {
				return err
			}
			if e == nil {
				return errors.New("entry not found")
			}
			return printEntry(cmd.OutOrStdout(), e)
		})
	},
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all of your entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUnlockedApp(cmd, func(a *app) error {
			items, err := a.journal.List(cmd.Context())
			if err != nil {
				return err
			}
			return printSummaries(cmd.OutOrStdout(), items)
		})
	},
}

var entriesSearchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search your entries by text, date range, mood and tag",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var f journal.Filter
		if len(args) == 1 {
			f.Text = args[0]
		}
		f.Mood, _ = cmd.Flags().GetString("mood")
		f.Tag, _ = cmd.Flags().GetString("tag")
		var err error
		if f.From, err = dateFlag(cmd, "from"); err != nil {
			return err
		}
		if f.To, err = dateFlag(cmd, "to"); err != nil {
			return err
		}
		page, size := pagingFlags(cmd)

		return withUnlockedApp(cmd, func(a *app) error {
			p, err := a.journal.Search(cmd.Context(), f, page, size)
			if err != nil {
				return err
			}
			return printPage(cmd.OutOrStdout(), p, false)
		})
	},
}

var entriesDeleteCmd = &cobra.Command{
	Use:   "delete [entry-id]",
	Short: "Delete an entry (today's when no ID is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUnlockedApp(cmd, func(a *app) error {
			var (
				deleted bool
				err     error
			)
			if len(args) == 1 {
				id, perr := uuid.Parse(args[0])
				if perr != nil {
					return fmt.Errorf("invalid entry ID %q: %w", args[0], perr)
				}
				deleted, err = a.journal.Delete(cmd.Context(), id)
			} else {
				deleted, err = a.journal.DeleteToday(cmd.Context())
			}
			if err != nil {
				return err
			}
			if !deleted {
				cmd.Println("Nothing to delete.")
				return nil
			}
			cmd.Println("Entry deleted.")
			return nil
		})
	},
}

var entriesTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the tags used on your entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUnlockedApp(cmd, func(a *app) error {
			tags, err := a.journal.Tags(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), tags)
			}
			for _, t := range tags {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		})
	},
}

var entriesPublicCmd = &cobra.Command{
	Use:   "public [text]",
	Short: "Browse the public feed of shared entries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		if len(args) == 1 {
			text = args[0]
		}
		page, size := pagingFlags(cmd)

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.journal.ListPublic(cmd.Context(), text, page, size)
		if err != nil {
			return err
		}
		return printPage(cmd.OutOrStdout(), p, true)
	},
}

var entriesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export entries in a date range to PDF or plain text",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := dateFlag(cmd, "from")
		if err != nil {
			return err
		}
		to, err := dateFlag(cmd, "to")
		if err != nil {
			return err
		}
		if from == nil || to == nil {
			return errors.New("both --from and --to are required")
		}
		format, _ := cmd.Flags().GetString("format")
		renderer, err := export.ForFormat(format)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")

		return withUnlockedApp(cmd, func(a *app) error {
			report, err := a.journal.ExportReport(cmd.Context(), *from, *to)
			if err != nil {
				return err
			}
			data, err := renderer.Render(cmd.Context(), report)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if out == "" {
				out = fmt.Sprintf("daybook-%s-%s.%s", from.Format(journal.DateLayout), to.Format(journal.DateLayout), renderer.Extension())
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			abs, _ := filepath.Abs(out)
			cmd.Printf("Exported %d entries to %s\n", len(report.Entries), abs)
			return nil
		})
	},
}

func fieldsFromFlags(cmd *cobra.Command) (journal.Fields, error) {
	content, _ := cmd.Flags().GetString("content")
	if content == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return journal.Fields{}, fmt.Errorf("failed to read content: %w", err)
		}
		content = string(data)
	}
	category, _ := cmd.Flags().GetString("category")
	mood, _ := cmd.Flags().GetString("mood")
	secondary, _ := cmd.Flags().GetStringSlice("also-felt")
	public, _ := cmd.Flags().GetBool("public")

	f := journal.Fields{
		Content:     content,
		Category:    category,
		PrimaryMood: mood,
		IsPublic:    public,
	}
	if len(secondary) > 2 {
		return f, errors.New("at most two --also-felt moods")
	}
	if len(secondary) > 0 {
		f.SecondaryMood1 = secondary[0]
	}
	if len(secondary) > 1 {
		f.SecondaryMood2 = secondary[1]
	}
	return f, nil
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	v, _ := cmd.Flags().GetString(name)
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	t, err := journal.ParseDate(v)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return &t, nil
}

func pagingFlags(cmd *cobra.Command) (int, int) {
	page, _ := cmd.Flags().GetInt("page")
	size := pageSize
	if cmd.Flags().Changed("page-size") {
		size, _ = cmd.Flags().GetInt("page-size")
	}
	return page, size
}

func addPagingFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 1, "Page number, starting at 1")
	cmd.Flags().Int("page-size", journal.DefaultPageSize, fmt.Sprintf("Entries per page (max %d)", journal.MaxPageSize))
}

func initEntriesCmd() {
	entriesCmd.PersistentFlags().String("pin", "", "PIN to unlock the journal, if one is set")

	entriesWriteCmd.Flags().String("content", "", `Entry text; "-" reads stdin`)
	entriesWriteCmd.Flags().String("category", "", "Entry category, e.g. Work or Family")
	entriesWriteCmd.Flags().String("mood", "", "Primary mood")
	entriesWriteCmd.Flags().StringSlice("also-felt", nil, "Up to two secondary moods")
	entriesWriteCmd.Flags().String("tags", "", "Comma-separated tags; replaces the entry's tags")
	entriesWriteCmd.Flags().Bool("public", false, "Share the entry on the public feed")
	entriesWriteCmd.MarkFlagRequired("content")
	entriesWriteCmd.MarkFlagRequired("category")
	entriesWriteCmd.MarkFlagRequired("mood")

	entriesSearchCmd.Flags().String("from", "", "Earliest entry date (YYYY-MM-DD)")
	entriesSearchCmd.Flags().String("to", "", "Latest entry date (YYYY-MM-DD)")
	entriesSearchCmd.Flags().String("mood", "", "Primary or secondary mood")
	entriesSearchCmd.Flags().String("tag", "", "Tag name or part of one")
	addPagingFlags(entriesSearchCmd)
	addPagingFlags(entriesPublicCmd)

	entriesExportCmd.Flags().String("from", "", "First date to export (YYYY-MM-DD)")
	entriesExportCmd.Flags().String("to", "", "Last date to export (YYYY-MM-DD)")
	entriesExportCmd.Flags().String("format", "pdf", "Export format: pdf or text")
	entriesExportCmd.Flags().String("out", "", `Output file; "-" writes to stdout`)

	entriesCmd.AddCommand(
		entriesWriteCmd,
		entriesGetCmd,
		entriesListCmd,
		entriesSearchCmd,
		entriesDeleteCmd,
		entriesTagsCmd,
		entriesPublicCmd,
		entriesExportCmd,
	)
}
