package main

import (
	"fmt"
	"path/filepath"

	"github.com/ZaguanLabs/wptl"
	"github.com/ZaguanLabs/wptl/config"
	"github.com/spf13/cobra"
)

// extractSegments runs the configured extractor without calling a provider.
func (a *app) extractSegments(tc config.Translation, input string) ([]wptl.TextSegment, error) {
	_, segments, err := newProcessor(tc).Extract(input)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	return segments, nil
}

func (a *app) newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <path>",
		Short: "Show the text a translation would send, without calling the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			input, name, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			segments, err := a.extractSegments(a.cfg.Translation, input)
			if err != nil {
				return err
			}

			if a.jsonOut {
				type segmentOut struct {
					ID    int    `json:"id"`
					Text  string `json:"text"`
					Path  string `json:"path"`
					Mixed bool   `json:"mixed,omitempty"`
				}
				out := struct {
					InputFile    string       `json:"input_file"`
					SegmentCount int          `json:"segment_count"`
					Segments     []segmentOut `json:"segments"`
				}{InputFile: name, SegmentCount: len(segments), Segments: []segmentOut{}}
				for _, s := range segments {
					out.Segments = append(out.Segments, segmentOut{ID: s.ID, Text: s.Text, Path: s.Path, Mixed: s.Mixed})
				}
				return a.writeJSON(out)
			}

			fmt.Fprintf(a.stdout, "Dry run: %s\n", name)
			fmt.Fprintf(a.stdout, "Found %d translatable segments:\n\n", len(segments))
			for i, s := range segments {
				fmt.Fprintf(a.stdout, "%3d. %q\n", i+1, truncate(s.Text, 60))
				if s.Path != "" {
					fmt.Fprintf(a.stdout, "     Path: %s\n", s.Path)
				}
			}
			return nil
		},
	}
}

func (a *app) newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Show which segments changed between two versions of a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			oldInput, _, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return fmt.Errorf("previous version: %w", err)
			}
			newInput, _, err := readInput(cmd.InOrStdin(), args[1])
			if err != nil {
				return fmt.Errorf("new version: %w", err)
			}

			oldSegs, err := a.extractSegments(a.cfg.Translation, oldInput)
			if err != nil {
				return fmt.Errorf("parsing previous version: %w", err)
			}
			newSegs, err := a.extractSegments(a.cfg.Translation, newInput)
			if err != nil {
				return fmt.Errorf("parsing new version: %w", err)
			}

			diff := wptl.DiffSegments(oldSegs, newSegs)
			stats := diff.Stats()

			if a.jsonOut {
				type change struct {
					Old string `json:"old"`
					New string `json:"new"`
				}
				out := struct {
					PreviousFile     string         `json:"previous_file"`
					NewFile          string         `json:"new_file"`
					Stats            wptl.DiffStats `json:"stats"`
					NeedsTranslation []string       `json:"needs_translation"`
					Added            []string       `json:"added,omitempty"`
					Removed          []string       `json:"removed,omitempty"`
					Modified         []change       `json:"modified,omitempty"`
				}{
					PreviousFile:     filepath.Base(args[0]),
					NewFile:          filepath.Base(args[1]),
					Stats:            stats,
					NeedsTranslation: []string{},
				}
				for _, s := range diff.NeedsTranslation() {
					out.NeedsTranslation = append(out.NeedsTranslation, s.Text)
				}
				for _, s := range diff.Added {
					out.Added = append(out.Added, s.Text)
				}
				for _, s := range diff.Removed {
					out.Removed = append(out.Removed, s.Text)
				}
				for _, m := range diff.Modified {
					out.Modified = append(out.Modified, change{Old: m.Old.Text, New: m.New.Text})
				}
				return a.writeJSON(out)
			}

			fmt.Fprintf(a.stdout, "Diff: %s vs %s\n\n", filepath.Base(args[0]), filepath.Base(args[1]))
			fmt.Fprintf(a.stdout, "Summary:\n")
			fmt.Fprintf(a.stdout, "  Unchanged: %d\n", stats.Unchanged)
			fmt.Fprintf(a.stdout, "  Added:     %d\n", stats.Added)
			fmt.Fprintf(a.stdout, "  Removed:   %d\n", stats.Removed)
			fmt.Fprintf(a.stdout, "  Modified:  %d\n\n", stats.Modified)

			if !diff.HasChanges() {
				fmt.Fprintf(a.stdout, "No changes detected. Every segment would be served from cache.\n")
				return nil
			}

			fmt.Fprintf(a.stdout, "Needs translation: %d segments\n\n", len(diff.NeedsTranslation()))
			for _, s := range diff.Added {
				fmt.Fprintf(a.stdout, "  + %q\n", truncate(s.Text, 50))
			}
			for _, m := range diff.Modified {
				fmt.Fprintf(a.stdout, "  ~ %q -> %q\n", truncate(m.Old.Text, 30), truncate(m.New.Text, 30))
			}
			for _, s := range diff.Removed {
				fmt.Fprintf(a.stdout, "  - %q\n", truncate(s.Text, 50))
			}
			return nil
		},
	}
}
