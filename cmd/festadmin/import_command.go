package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"festadmin/internal/content"
	"festadmin/internal/logging"
	"festadmin/internal/services"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load a JSON export into the document store",
		Long: "Load documents from a JSON export of the form\n" +
			"  {\"collection\": \"films\", \"documents\": [{\"id\": \"f-1\", ...}]}\n" +
			"Documents are stored as given, legacy media shapes included; run\n" +
			"migrate-media afterwards to canonicalize them.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return services.Wrap(services.ErrNotFound, "cli", "import", "open "+args[0], err)
			}
			defer file.Close()

			batch, err := content.ReadImport(file)
			if err != nil {
				return err
			}
			return ctx.withRepository(cmd.Context(), func(repo content.Repository) error {
				stored, err := batch.Apply(cmd.Context(), repo, collection)
				if err != nil {
					return err
				}
				target := collection
				if target == "" {
					target = batch.Collection
				}
				logging.NewComponentLogger(ctx.log(), "import").Info("documents imported",
					logging.String(logging.FieldCollection, target),
					logging.Int("documents", stored),
					logging.String("source", args[0]),
				)
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d document(s) into %s\n", stored, target)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "", "Target collection (overrides the file's collection)")
	return cmd
}
