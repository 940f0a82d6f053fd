package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelist/internal/discovery"
)

func newWatchlistCommand(ctx *commandContext) *cobra.Command {
	watchlistCmd := &cobra.Command{
		Use:     "watchlist",
		Aliases: []string{"wl"},
		Short:   "Show and edit your watchlist",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchlistList(cmd, ctx)
		},
	}

	watchlistCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show saved movies, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchlistList(cmd, ctx)
		},
	})
	watchlistCmd.AddCommand(newWatchlistEditCommand(ctx, "add", "Save a movie to your watchlist"))
	watchlistCmd.AddCommand(newWatchlistEditCommand(ctx, "remove", "Remove a movie from your watchlist"))
	watchlistCmd.AddCommand(newWatchlistEditCommand(ctx, "toggle", "Add the movie if missing, remove it otherwise"))

	return watchlistCmd
}

func newWatchlistEditCommand(ctx *commandContext, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <movie-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			movieID, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(runCtx context.Context, s *session) error {
				var saved bool
				switch action {
				case "add":
					err = s.store.AddToWatchlist(runCtx, movieID)
					saved = true
				case "remove":
					err = s.store.RemoveFromWatchlist(runCtx, movieID)
				default:
					saved, err = s.store.ToggleWatchlist(runCtx, movieID)
				}
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"movie_id": movieID, "in_watchlist": saved})
				}
				if saved {
					fmt.Fprintf(cmd.OutOrStdout(), "Movie %d is in your watchlist\n", movieID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Movie %d is not in your watchlist\n", movieID)
				}
				return nil
			})
		},
	}
}

type watchlistRowJSON struct {
	movieJSON
	AddedAt time.Time `json:"added_at"`
}

type watchlistJSON struct {
	Items       []watchlistRowJSON `json:"items"`
	Unavailable []int64            `json:"unavailable,omitempty"`
}

func runWatchlistList(cmd *cobra.Command, ctx *commandContext) error {
	return ctx.withService(cmd, func(runCtx context.Context, s *session, svc *discovery.Service) error {
		view, err := svc.Watchlist(runCtx)
		if err != nil {
			return err
		}
		if ctx.jsonOutput() {
			payload := watchlistJSON{Items: make([]watchlistRowJSON, 0, len(view.Rows)), Unavailable: view.Unavailable}
			for _, row := range view.Rows {
				entry := summaryJSON(s, row.Movie.Summary())
				payload.Items = append(payload.Items, watchlistRowJSON{movieJSON: entry, AddedAt: row.AddedAt})
			}
			return writeJSON(cmd, payload)
		}

		out := cmd.OutOrStdout()
		if len(view.Rows) == 0 && len(view.Unavailable) == 0 {
			fmt.Fprintln(out, discovery.MessageEmptyWatchlist)
			return nil
		}
		f := newFormatter(out, s.cfg)
		if len(view.Rows) > 0 {
			rows := make([][]string, 0, len(view.Rows))
			for _, row := range view.Rows {
				rating := ""
				if row.Rated {
					rating = f.stars(row.Rating)
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", row.Movie.ID),
					row.Movie.Title,
					f.year(row.Movie.Year()),
					f.score(row.Movie.VoteAverage, row.Movie.VoteCount),
					f.since(row.AddedAt),
					rating,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Year", "Score", "Added", "Yours"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				f.width,
			))
		}
		if len(view.Unavailable) > 0 {
			ids := make([]string, 0, len(view.Unavailable))
			for _, id := range view.Unavailable {
				ids = append(ids, fmt.Sprintf("%d", id))
			}
			fmt.Fprintf(out, "%s Skipped: %s\n", discovery.MessageWatchlistFailed, strings.Join(ids, ", "))
		}
		return nil
	})
}
