package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"trackshelf/internal/catalog"
)

// loadCatalog fetches the catalog once for this run. A failed fetch is not
// fatal: the sample tracks are shown and the banner goes to stderr.
func loadCatalog(cmd *cobra.Command, ctx *commandContext) (*app, error) {
	a, err := ctx.ensureApp()
	if err != nil {
		return nil, err
	}

	err = a.store.EnsureLoaded(cmd.Context())
	var failure *catalog.FetchFailure
	switch {
	case err == nil:
	case errors.As(err, &failure):
		fmt.Fprintln(cmd.ErrOrStderr(), failure.Error())
	default:
		return nil, err
	}
	return a, nil
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var genre string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadCatalog(cmd, ctx)
			if err != nil {
				return err
			}

			rows := a.store.List(genre)
			if ctx.jsonOutput() {
				return writeJSON(cmd, rows)
			}
			printRows(cmd, rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&genre, "genre", "g", catalog.AllGenres, "Only show tracks of this genre")
	return cmd
}

func newFacetsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "facets",
		Short: "Show the genre facets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadCatalog(cmd, ctx)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("limit") {
				limit = ctx.config.Catalog.FacetLimit
			}
			facets := a.store.Facets(limit)
			if ctx.jsonOutput() {
				return writeJSON(cmd, facets)
			}
			for _, f := range facets {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum facets including All (0 for no cap; defaults to catalog.facet_limit)")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTrackID(args[0])
			if err != nil {
				return err
			}
			a, err := loadCatalog(cmd, ctx)
			if err != nil {
				return err
			}

			track, ok := a.store.Track(id)
			if !ok {
				return fmt.Errorf("track %d not found", id)
			}
			row := catalog.Row{Track: track, Favorited: a.store.IsFavorite(id)}
			if ctx.jsonOutput() {
				return writeJSON(cmd, row)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", row.Title)
			fmt.Fprintf(out, "  Artist:    %s (%s)\n", row.ArtistName, row.ArtistGenre)
			fmt.Fprintf(out, "  Rating:    %s\n", formatRating(row.Rating))
			fmt.Fprintf(out, "  Favorite:  %s\n", yesNo(row.Favorited))
			if row.URL != "" {
				fmt.Fprintf(out, "  URL:       %s\n", row.URL)
			}
			if row.Description != "" {
				fmt.Fprintf(out, "  About:     %s\n", row.Description)
			}
			if row.ArtistBio != "" {
				fmt.Fprintf(out, "  Bio:       %s\n", row.ArtistBio)
			}
			return nil
		},
	}
}

func printRows(cmd *cobra.Command, rows []catalog.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tracks")
		return
	}

	headers := []string{"ID", "Title", "Artist", "Genre", "Rating", "Fav"}
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		fav := ""
		if r.Favorited {
			fav = "*"
		}
		data = append(data, []string{
			strconv.Itoa(r.ID),
			r.Title,
			r.ArtistName,
			r.ArtistGenre,
			formatRating(r.Rating),
			fav,
		})
	}
	writeRows(cmd.OutOrStdout(), headers, data, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
}

func parseTrackID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid track id %q", raw)
	}
	return id, nil
}

func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', 1, 64)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
