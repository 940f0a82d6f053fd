package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"reelist/internal/discovery"
	"reelist/internal/tmdb"
)

type movieJSON struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Year        int     `json:"year,omitempty"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
	PosterURL   string  `json:"poster_url,omitempty"`
	InWatchlist bool    `json:"in_watchlist"`
	UserRating  int     `json:"user_rating,omitempty"`
}

type pageJSON struct {
	View         string      `json:"view"`
	Query        string      `json:"query,omitempty"`
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
	Results      []movieJSON `json:"results"`
}

func newPopularCommand(ctx *commandContext) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "popular",
		Short: "List popular movies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(runCtx context.Context, s *session, svc *discovery.Service) error {
				home, err := svc.Home(runCtx, "", page)
				if err != nil {
					return err
				}
				return printHomePage(cmd, ctx, s, home)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Result page to show")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search movies by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withService(cmd, func(runCtx context.Context, s *session, svc *discovery.Service) error {
				home, err := svc.Home(runCtx, query, page)
				if err != nil {
					return err
				}
				return printHomePage(cmd, ctx, s, home)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Result page to show")
	return cmd
}

func printHomePage(cmd *cobra.Command, ctx *commandContext, s *session, home *discovery.HomePage) error {
	if ctx.jsonOutput() {
		payload := pageJSON{
			View:         home.View,
			Query:        home.Query,
			Page:         home.Results.Page,
			TotalPages:   home.Results.TotalPages,
			TotalResults: home.Results.TotalResults,
			Results:      make([]movieJSON, 0, len(home.Results.Results)),
		}
		for _, movie := range home.Results.Results {
			payload.Results = append(payload.Results, summaryJSON(s, movie))
		}
		return writeJSON(cmd, payload)
	}

	out := cmd.OutOrStdout()
	if home.Empty() {
		fmt.Fprintln(out, discovery.MessageNoResults)
		return nil
	}
	f := newFormatter(out, s.cfg)
	if home.View == discovery.ViewSearch {
		fmt.Fprintln(out, f.heading(fmt.Sprintf("Results for %q", home.Query)))
	} else {
		fmt.Fprintln(out, f.heading("Popular movies"))
	}
	fmt.Fprintln(out, renderMovieTable(f, s, home.Results.Results))
	fmt.Fprintf(out, "Page %d of %d (%s results)\n",
		home.Results.Page, home.Results.TotalPages, f.count(int64(home.Results.TotalResults)))
	return nil
}

func summaryJSON(s *session, movie tmdb.MovieSummary) movieJSON {
	rating, _ := s.store.GetUserRating(movie.ID)
	entry := movieJSON{
		ID:          movie.ID,
		Title:       movie.Title,
		Year:        movie.Year(),
		VoteAverage: movie.VoteAverage,
		VoteCount:   movie.VoteCount,
		InWatchlist: s.store.IsInWatchlist(movie.ID),
		UserRating:  rating,
	}
	if movie.PosterPath != "" {
		entry.PosterURL = tmdb.BuildImageURL(s.cfg.TMDB.ImageBaseURL, movie.PosterPath, tmdb.SizeW500)
	}
	return entry
}

func renderMovieTable(f formatter, s *session, movies []tmdb.MovieSummary) string {
	rows := make([][]string, 0, len(movies))
	for _, movie := range movies {
		saved := ""
		if s.store.IsInWatchlist(movie.ID) {
			saved = "✓"
		}
		rating, _ := s.store.GetUserRating(movie.ID)
		rows = append(rows, []string{
			fmt.Sprintf("%d", movie.ID),
			movie.Title,
			f.year(movie.Year()),
			f.score(movie.VoteAverage, movie.VoteCount),
			f.count(movie.VoteCount),
			saved,
			f.stars(rating),
		})
	}
	return renderTable(
		[]string{"ID", "Title", "Year", "Score", "Votes", "Saved", "Yours"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
		f.width,
	)
}

func newGenresCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List catalog genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(runCtx context.Context, s *session, svc *discovery.Service) error {
				genres, err := svc.Genres(runCtx)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, genres.Genres)
				}
				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(genres.Genres))
				for _, genre := range genres.Genres {
					rows = append(rows, []string{fmt.Sprintf("%d", genre.ID), genre.Name})
				}
				fmt.Fprintln(out, renderTable([]string{"ID", "Genre"}, rows,
					[]columnAlignment{alignRight, alignLeft}, terminalWidth(out)))
				return nil
			})
		},
	}
}

type detailJSON struct {
	movieJSON
	Tagline     string   `json:"tagline,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Runtime     string   `json:"runtime,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Directors   []string `json:"directors,omitempty"`
	Cast        []string `json:"cast,omitempty"`
	Trailers    []string `json:"trailers,omitempty"`
	Similar     []int64  `json:"similar,omitempty"`
	BackdropURL string   `json:"backdrop_url,omitempty"`
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <movie-id>",
		Short: "Show movie details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			movieID, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(runCtx context.Context, s *session, svc *discovery.Service) error {
				view, err := svc.Detail(runCtx, movieID)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, newDetailJSON(view))
				}
				printDetail(cmd.OutOrStdout(), newFormatter(cmd.OutOrStdout(), s.cfg), view)
				return nil
			})
		},
	}
}

func newDetailJSON(view *discovery.DetailView) detailJSON {
	movie := view.Movie
	payload := detailJSON{
		movieJSON: movieJSON{
			ID:          movie.ID,
			Title:       movie.Title,
			Year:        movie.Year(),
			VoteAverage: movie.VoteAverage,
			VoteCount:   movie.VoteCount,
			PosterURL:   view.PosterURL,
			InWatchlist: view.InWatchlist,
			UserRating:  view.UserRating,
		},
		Tagline:     movie.Tagline,
		Overview:    movie.Overview,
		ReleaseDate: movie.ReleaseDate,
		Runtime:     view.Runtime,
		Directors:   view.Directors,
		BackdropURL: view.BackdropURL,
	}
	for _, genre := range movie.Genres {
		payload.Genres = append(payload.Genres, genre.Name)
	}
	for _, member := range view.Cast {
		payload.Cast = append(payload.Cast, member.Name)
	}
	for _, video := range view.Videos {
		payload.Trailers = append(payload.Trailers, video.EmbedURL())
	}
	for _, similar := range view.Similar {
		payload.Similar = append(payload.Similar, similar.ID)
	}
	return payload
}

func printDetail(out io.Writer, f formatter, view *discovery.DetailView) {
	movie := view.Movie
	title := movie.Title
	if year := movie.Year(); year != 0 {
		title = fmt.Sprintf("%s (%d)", movie.Title, year)
	}
	fmt.Fprintln(out, f.heading(title))
	if movie.Tagline != "" {
		fmt.Fprintf(out, "  %s\n", movie.Tagline)
	}
	fmt.Fprintln(out)

	genres := make([]string, 0, len(movie.Genres))
	for _, genre := range movie.Genres {
		genres = append(genres, genre.Name)
	}
	printField(out, "ID", fmt.Sprintf("%d", movie.ID))
	printField(out, "Released", movie.ReleaseDate)
	printField(out, "Runtime", view.Runtime)
	printField(out, "Genres", strings.Join(genres, ", "))
	printField(out, "Directed by", strings.Join(view.Directors, ", "))
	printField(out, "Score", fmt.Sprintf("%s (%s votes)", f.score(movie.VoteAverage, movie.VoteCount), f.count(movie.VoteCount)))
	printField(out, "Watchlist", yesNo(view.InWatchlist))
	if view.Rated {
		printField(out, "Your rating", f.stars(view.UserRating))
	} else {
		printField(out, "Your rating", "not rated")
	}
	printField(out, "Poster", view.PosterURL)

	if movie.Overview != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, movie.Overview)
	}

	if len(view.Cast) > 0 {
		fmt.Fprintln(out)
		rows := make([][]string, 0, len(view.Cast))
		for _, member := range view.Cast {
			rows = append(rows, []string{member.Name, member.Character})
		}
		fmt.Fprintln(out, renderTable([]string{"Cast", "Character"}, rows, nil, f.width))
	}

	if len(view.Videos) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, f.heading("Trailers"))
		for _, video := range view.Videos {
			fmt.Fprintf(out, "  %s  %s\n", video.Name, video.EmbedURL())
		}
	}

	if len(view.Similar) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, f.heading("Similar"))
		for _, similar := range view.Similar {
			fmt.Fprintf(out, "  %-8d %s %s\n", similar.ID, similar.Title, yearSuffix(similar.Year()))
		}
	}
}

func printField(out io.Writer, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(out, "%-12s %s\n", label+":", value)
}

func yearSuffix(year int) string {
	if year == 0 {
		return ""
	}
	return fmt.Sprintf("(%d)", year)
}
