package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trackshelf/internal/form"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	values := make(map[form.Field]*string, len(form.Fields))

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Submit a new track to the catalog",
		Long: "Submit a new track. Title and singer name are required. Suggested genres: " +
			strings.Join(form.Genres, ", ") + ".",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}

			var f form.TrackForm
			for _, field := range form.Fields {
				if f, err = form.Update(f, field, *values[field]); err != nil {
					return err
				}
			}

			_, err = form.Submit(cmd.Context(), a.client, f)
			var vf *form.ValidationFailure
			if errors.As(err, &vf) {
				if ctx.jsonOutput() {
					if jerr := writeJSON(cmd, vf.Errors); jerr != nil {
						return jerr
					}
				} else {
					for _, e := range vf.Errors {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", e.Field, e.Message)
					}
				}
				return errors.New("track not submitted")
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Track added")
			return nil
		},
	}

	flags := cmd.Flags()
	for _, field := range form.Fields {
		values[field] = flags.String(flagName(field), "", addFlagUsage[field])
	}
	return cmd
}

var addFlagUsage = map[form.Field]string{
	form.FieldTitle:       "Track title (required)",
	form.FieldDescription: "Track description",
	form.FieldURL:         "Link to the track",
	form.FieldRating:      "Rating, a number",
	form.FieldSingerName:  "Artist name (required)",
	form.FieldSingerGenre: "Artist genre",
	form.FieldSingerBio:   "Artist biography",
	form.FieldSingerPhoto: "Artist photo URL",
}

// flagName turns a camelCase field into a kebab-case flag.
func flagName(field form.Field) string {
	var b strings.Builder
	for _, r := range string(field) {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
