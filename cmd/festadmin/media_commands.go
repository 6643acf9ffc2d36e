package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"festadmin/internal/content"
	"festadmin/internal/logging"
	"festadmin/internal/media"
	"festadmin/internal/mediadoc"
	"festadmin/internal/services"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "Inspect and edit the media of a single record",
	}

	var repair bool
	mediaCmd.PersistentFlags().BoolVar(&repair, "repair", false, "Repair an edit that would leave invalid role pointers instead of rejecting it")

	mediaCmd.AddCommand(newMediaShowCommand(ctx))
	mediaCmd.AddCommand(newMediaEditCommand(ctx, &repair, "set-cover <collection> <id> <index>", "Designate the asset at index as cover", 1,
		func(rec media.Record, args []string) (media.Record, error) {
			index, err := parseIndexArg("index", args[0])
			if err != nil {
				return rec, err
			}
			return media.SetCoverIndex(rec, index)
		}))
	mediaCmd.AddCommand(newMediaEditCommand(ctx, &repair, "set-logo <collection> <id> <index>", "Designate the asset at index as logo", 1,
		func(rec media.Record, args []string) (media.Record, error) {
			index, err := parseIndexArg("index", args[0])
			if err != nil {
				return rec, err
			}
			return media.SetLogoIndex(rec, index)
		}))
	mediaCmd.AddCommand(newMediaEditCommand(ctx, &repair, "clear-cover <collection> <id>", "Remove the cover designation", 0,
		func(rec media.Record, _ []string) (media.Record, error) {
			return media.ClearCover(rec), nil
		}))
	mediaCmd.AddCommand(newMediaEditCommand(ctx, &repair, "clear-logo <collection> <id>", "Remove the logo designation", 0,
		func(rec media.Record, _ []string) (media.Record, error) {
			return media.ClearLogo(rec), nil
		}))
	mediaCmd.AddCommand(newMediaAddCommand(ctx, &repair))
	mediaCmd.AddCommand(newMediaEditCommand(ctx, &repair, "remove <collection> <id> <index>", "Remove the asset at index", 1,
		func(rec media.Record, args []string) (media.Record, error) {
			index, err := parseIndexArg("index", args[0])
			if err != nil {
				return rec, err
			}
			return media.RemoveAsset(rec, index)
		}))
	mediaCmd.AddCommand(newMediaEditCommand(ctx, &repair, "move <collection> <id> <from> <to>", "Move an asset; role designations follow their assets", 2,
		func(rec media.Record, args []string) (media.Record, error) {
			from, err := parseIndexArg("from", args[0])
			if err != nil {
				return rec, err
			}
			to, err := parseIndexArg("to", args[1])
			if err != nil {
				return rec, err
			}
			return media.MoveAsset(rec, from, to)
		}))

	return mediaCmd
}

// mediaEdit applies one accessor operation. args holds the positional
// arguments after collection and id.
type mediaEdit func(rec media.Record, args []string) (media.Record, error)

func newMediaEditCommand(ctx *commandContext, repair *bool, use, short string, extraArgs int, edit mediaEdit) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2 + extraArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.editMedia(cmd, args[0], args[1], *repair, func(rec media.Record) (media.Record, error) {
				return edit(rec, args[2:])
			})
		},
	}
}

func newMediaAddCommand(ctx *commandContext, repair *bool) *cobra.Command {
	var at int
	cmd := &cobra.Command{
		Use:   "add <collection> <id> <url>",
		Short: "Add an asset, appending unless --at is given",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[2]
			insert := cmd.Flags().Changed("at")
			return ctx.editMedia(cmd, args[0], args[1], *repair, func(rec media.Record) (media.Record, error) {
				if insert {
					return media.InsertAsset(rec, at, url)
				}
				return media.AppendAsset(rec, url)
			})
		},
	}
	cmd.Flags().IntVar(&at, "at", 0, "Insert position; role designations keep addressing their assets")
	return cmd
}

func newMediaShowCommand(ctx *commandContext) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <collection> <id>",
		Short: "Show the gallery, cover, logo, and poster of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			return ctx.withRepository(cmd.Context(), func(repo content.Repository) error {
				doc, err := repo.Get(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				view := buildMediaView(doc)
				handled, err := writeStructured(cmd, format, view)
				if err != nil || handled {
					return err
				}
				renderMediaView(cmd.OutOrStdout(), view, shouldColorize(cmd.OutOrStdout()))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json, or yaml")
	return cmd
}

// editMedia loads a record, applies edit through the accessor layer, and
// persists the result with a revision check so concurrent edits are detected.
func (c *commandContext) editMedia(cmd *cobra.Command, collection, id string, repair bool, edit func(media.Record) (media.Record, error)) error {
	return c.withRepository(cmd.Context(), func(repo content.Repository) error {
		ctx := services.WithRecordID(services.WithCollection(cmd.Context(), collection), id)
		logger := logging.WithContext(ctx, logging.NewComponentLogger(c.log(), "media"))

		doc, err := repo.Get(ctx, collection, id)
		if err != nil {
			return err
		}
		rec, skips := mediadoc.Normalize(doc.ID, doc.Fields)
		for _, skip := range skips {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s dropped while loading\n", skip)
		}

		next, err := edit(rec)
		if err != nil {
			if errors.Is(err, media.ErrIndexOutOfRange) || errors.Is(err, media.ErrEmptyURL) {
				return services.Wrap(services.ErrValidation, "media", "edit", "", err)
			}
			return err
		}
		if result := media.Validate(next); !result.Valid {
			if !repair {
				return services.Wrap(services.ErrValidation, "media", "edit",
					fmt.Sprintf("result would be invalid (%s); rerun with --repair", strings.Join(result.Issues, "; ")), nil)
			}
			next = media.Repair(next)
			logger.Info("edit repaired", logging.String("issues", strings.Join(result.Issues, "; ")))
		}

		if err := repo.UpdateMedia(ctx, collection, id, doc.Revision, next); err != nil {
			return err
		}
		logger.Info("media updated", logging.Int64("revision", doc.Revision))

		updated, err := repo.Get(ctx, collection, id)
		if err != nil {
			return err
		}
		renderMediaView(cmd.OutOrStdout(), buildMediaView(updated), shouldColorize(cmd.OutOrStdout()))
		return nil
	})
}

func parseIndexArg(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "media", "parse "+name, fmt.Sprintf("%q is not an integer", value), nil)
	}
	return n, nil
}

type mediaView struct {
	Collection string              `json:"collection" yaml:"collection"`
	ID         string              `json:"id" yaml:"id"`
	Revision   int64               `json:"revision" yaml:"revision"`
	Shape      mediadoc.Shape      `json:"shape" yaml:"shape"`
	Cover      *string             `json:"cover" yaml:"cover"`
	CoverIndex *int                `json:"coverIndex" yaml:"coverIndex"`
	Logo       *string             `json:"logo" yaml:"logo"`
	Poster     *string             `json:"poster" yaml:"poster"`
	Gallery    []media.GalleryItem `json:"gallery" yaml:"gallery"`
	Validation media.Result        `json:"validation" yaml:"validation"`
	Skips      []string            `json:"skips,omitempty" yaml:"skips,omitempty"`
}

func buildMediaView(doc *content.Document) mediaView {
	rec, skips := mediadoc.Normalize(doc.ID, doc.Fields)
	view := mediaView{
		Collection: doc.Collection,
		ID:         doc.ID,
		Revision:   doc.Revision,
		Shape:      mediadoc.Classify(doc.Fields),
		CoverIndex: rec.Collection.CoverIndex,
		Gallery:    media.GalleryView(rec),
		Validation: media.Validate(rec),
	}
	if url, ok := media.Cover(rec); ok {
		view.Cover = &url
	}
	if url, ok := media.Logo(rec); ok {
		view.Logo = &url
	}
	if url, ok := media.Poster(rec); ok {
		view.Poster = &url
	}
	for _, skip := range skips {
		view.Skips = append(view.Skips, skip.String())
	}
	return view
}

func renderMediaView(out io.Writer, view mediaView, colorize bool) {
	fmt.Fprintf(out, "%s / %s (revision %d, %s)\n", collectionLabel(view.Collection), view.ID, view.Revision, view.Shape)

	rows := make([][]string, 0, len(view.Gallery))
	for _, item := range view.Gallery {
		var roles []string
		if item.IsCover {
			roles = append(roles, "cover")
		}
		if item.IsLogo {
			roles = append(roles, "logo")
		}
		rows = append(rows, []string{strconv.Itoa(item.Index), item.URL, joinOrDash(roles)})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"#", "URL", "Role"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
	} else {
		fmt.Fprintln(out, "No gallery assets.")
	}

	cover := optionalString(view.Cover)
	if view.Cover != nil && view.CoverIndex == nil {
		cover += " (first asset)"
	}
	fmt.Fprintf(out, "Cover:  %s\n", cover)
	fmt.Fprintf(out, "Logo:   %s\n", optionalString(view.Logo))
	fmt.Fprintf(out, "Poster: %s\n", optionalString(view.Poster))
	fmt.Fprintf(out, "Valid:  %s\n", yesNo(view.Validation.Valid))
	for _, issue := range view.Validation.Issues {
		fmt.Fprintf(out, "  %s\n", paint(issue, ansiRed, colorize))
	}
	for _, skip := range view.Skips {
		fmt.Fprintf(out, "  %s\n", paint("dropped "+skip, ansiYellow, colorize))
	}
}

func optionalString(value *string) string {
	if value == nil {
		return "-"
	}
	return *value
}
