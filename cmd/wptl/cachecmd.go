package main

import (
	"fmt"

	"github.com/ZaguanLabs/wptl"
	"github.com/ZaguanLabs/wptl/cache"
	"github.com/spf13/cobra"
)

func (a *app) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Export or import the translation cache",
	}
	cmd.AddCommand(a.newCacheExportCmd(), a.newCacheImportCmd())
	return cmd
}

func (a *app) newCacheExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write every cached translation to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			store, closeCache, err := a.openCache(cmd.Context())
			if err != nil {
				return err
			}
			defer closeCache()

			enum, ok := store.(cache.Enumerable)
			if !ok {
				return &wptl.CacheError{Message: fmt.Sprintf("cache type %q cannot be exported", a.cfg.Cache.Type)}
			}
			meta := map[string]string{"source": wptl.UserAgent(), "cache_type": a.cfg.Cache.Type}
			if err := cache.NewExporter(enum).ExportToFile(args[0], meta); err != nil {
				return err
			}
			if !a.quiet {
				fmt.Fprintf(a.stderr, "Cache exported to %s\n", args[0])
			}
			return nil
		},
	}
}

func (a *app) newCacheImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load cached translations from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			store, closeCache, err := a.openCache(cmd.Context())
			if err != nil {
				return err
			}
			defer closeCache()
			if store == nil {
				return &wptl.CacheError{Message: "caching is disabled"}
			}

			res, err := cache.NewImporter(store).ImportFromFile(args[0])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.writeJSON(res)
			}
			fmt.Fprintf(a.stdout, "Imported %d entries (%d failed)\n", res.Imported, res.Failed)
			return nil
		},
	}
}
