package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFavoritesCommand(ctx *commandContext) *cobra.Command {
	favCmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "List and edit favorite tracks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadCatalog(cmd, ctx)
			if err != nil {
				return err
			}

			rows := a.store.Favorites()
			if ctx.jsonOutput() {
				return writeJSON(cmd, rows)
			}
			printRows(cmd, rows)
			return nil
		},
	}

	favCmd.AddCommand(newFavoriteEditCommand(ctx, "toggle", "Toggle a track's favorite flag"))
	favCmd.AddCommand(newFavoriteEditCommand(ctx, "add", "Mark a track as favorite"))
	favCmd.AddCommand(newFavoriteEditCommand(ctx, "remove", "Unmark a favorite track"))

	return favCmd
}

// newFavoriteEditCommand builds toggle, add and remove. Editing favorites
// does not need the catalog, only the favorite set.
func newFavoriteEditCommand(ctx *commandContext, op, short string) *cobra.Command {
	return &cobra.Command{
		Use:   op + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTrackID(args[0])
			if err != nil {
				return err
			}
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}

			var favorited, changed bool
			switch op {
			case "toggle":
				favorited, changed = a.store.ToggleFavorite(id), true
			case "add":
				favorited, changed = true, a.store.AddFavorite(id)
			case "remove":
				favorited, changed = false, a.store.RemoveFavorite(id)
			}

			if !ctx.config.Favorites.Persist {
				fmt.Fprintln(cmd.ErrOrStderr(), "note: favorites.persist is off, the change lasts only for this run")
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"id":        id,
					"favorited": favorited,
					"changed":   changed,
					"favorites": a.store.FavoriteIDs(),
				})
			}

			state := "not a favorite"
			if favorited {
				state = "a favorite"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Track %d is %s\n", id, state)
			return nil
		},
	}
}
