package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"reelist/internal/userdata"
)

func newRateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <movie-id> <rating>",
		Short: "Rate a movie from 1 to 5 stars",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			movieID, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			rating, err := parseRating(args[1])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(runCtx context.Context, s *session) error {
				if err := s.store.RateMovie(runCtx, movieID, rating); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"movie_id": movieID, "rating": rating})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Rated movie %d %s\n", movieID, newFormatter(out, s.cfg).stars(rating))
				return nil
			})
		},
	}
}

func newRatingsCommand(ctx *commandContext) *cobra.Command {
	ratingsCmd := &cobra.Command{
		Use:   "ratings",
		Short: "Show and clear your ratings",
	}

	ratingsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show every rated movie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, s *session) error {
				entries := s.store.Ratings()
				if ctx.jsonOutput() {
					if entries == nil {
						entries = []userdata.RatingEntry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "You have not rated any movies yet.")
					return nil
				}
				f := newFormatter(out, s.cfg)
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						fmt.Sprintf("%d", entry.MovieID),
						f.stars(entry.Rating),
						f.since(entry.RatedAt),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"ID", "Rating", "Rated"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft}, f.width))
				return nil
			})
		},
	})

	ratingsCmd.AddCommand(&cobra.Command{
		Use:   "clear <movie-id>",
		Short: "Remove your rating for a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			movieID, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(runCtx context.Context, s *session) error {
				if err := s.store.RemoveRating(runCtx, movieID); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"movie_id": movieID, "rated": false})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared rating for movie %d\n", movieID)
				return nil
			})
		},
	})

	return ratingsCmd
}
