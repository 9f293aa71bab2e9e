package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ZaguanLabs/wptl"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// resultJSON is the machine-readable run summary.
type resultJSON struct {
	RunID       string `json:"run_id"`
	Language    string `json:"language"`
	Segments    int    `json:"segments"`
	Batches     int    `json:"batches"`
	Translated  int    `json:"translated"`
	Cached      int    `json:"cached"`
	Fallback    int    `json:"fallback"`
	Dropped     int    `json:"dropped"`
	Mismatches  int    `json:"mismatches"`
	ElapsedMs   int64  `json:"elapsed_ms"`
	Content     string `json:"content,omitempty"`
	PageID      int    `json:"page_id,omitempty"`
	DraftID     int    `json:"draft_id,omitempty"`
	DraftTitle  string `json:"draft_title,omitempty"`
	DraftStatus string `json:"draft_status,omitempty"`
}

func summarize(r *wptl.Result, lang string, elapsed time.Duration) resultJSON {
	return resultJSON{
		RunID:      r.RunID,
		Language:   lang,
		Segments:   r.TotalSegments,
		Batches:    r.Batches,
		Translated: r.TranslatedCount,
		Cached:     r.CachedCount,
		Fallback:   r.FallbackCount,
		Dropped:    len(r.Dropped),
		Mismatches: len(r.Mismatches),
		ElapsedMs:  elapsed.Milliseconds(),
	}
}

func (a *app) printStats(r *wptl.Result, elapsed time.Duration) {
	if a.quiet {
		return
	}
	fmt.Fprintf(a.stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(a.stderr, "  Segments found: %d\n", r.TotalSegments)
	fmt.Fprintf(a.stderr, "  Batches:        %d\n", r.Batches)
	fmt.Fprintf(a.stderr, "  Translated:     %d\n", r.TranslatedCount)
	fmt.Fprintf(a.stderr, "  From cache:     %d\n", r.CachedCount)
	if r.FallbackCount > 0 {
		fmt.Fprintf(a.stderr, "  Kept original:  %d\n", r.FallbackCount)
	}
}

func (a *app) targetLang(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if a.cfg != nil && a.cfg.Translation.Target != "" {
		return a.cfg.Translation.Target, nil
	}
	return "", fmt.Errorf("--lang is required")
}

func (a *app) newTranslateCmd() *cobra.Command {
	var lang, model string

	cmd := &cobra.Command{
		Use:   "translate <page-id>",
		Short: "Translate a page and create the result as a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageID, err := strconv.Atoi(args[0])
			if err != nil || pageID <= 0 {
				return fmt.Errorf("invalid page id %q", args[0])
			}
			ctx := cmd.Context()

			client, err := a.wordpressClient()
			if err != nil {
				return err
			}
			target, err := a.targetLang(lang)
			if err != nil {
				return err
			}
			translator, closeCache, err := a.setupTranslation(ctx)
			if err != nil {
				return err
			}
			defer closeCache()

			progressFn, finish := a.progressFor(fmt.Sprintf("Page %d", pageID))
			start := time.Now()
			res, err := wptl.NewPageTranslator(client, translator, a.logger).
				TranslatePage(ctx, pageID, target, model, progressFn)
			finish(err)
			if err != nil {
				a.logger.Error("page translation failed", zap.Int("page_id", pageID), zap.Error(err))
				return err
			}
			elapsed := time.Since(start)

			if a.jsonOut {
				out := summarize(res.Translation, res.Language.Code, elapsed)
				out.PageID = res.Source.ID
				out.DraftID = res.Created.ID
				out.DraftTitle = res.Created.Title
				out.DraftStatus = res.Created.Status
				return a.writeJSON(out)
			}

			fmt.Fprintf(a.stdout, "Created draft %d %q (%s)\n", res.Created.ID, res.Created.Title, res.Created.Slug)
			a.printStats(res.Translation, elapsed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Target language code or name (e.g. es, German)")
	cmd.Flags().StringVar(&model, "model", "", "Model id (default: translation.model)")
	return cmd
}

func (a *app) newFileCmd() *cobra.Command {
	var lang, source, model, output string

	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Translate a local HTML file",
		Long:  "Translate a local HTML file. Use - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(); err != nil {
				return err
			}
			target, err := a.targetLang(lang)
			if err != nil {
				return err
			}

			input, name, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			translator, closeCache, err := a.setupTranslation(ctx)
			if err != nil {
				return err
			}
			defer closeCache()

			progressFn, finish := a.progressFor(name)
			start := time.Now()
			result, err := translator.TranslateHTML(ctx, input, wptl.Request{TargetLang: target, SourceLang: source, Model: model}, progressFn)
			finish(err)
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}
			elapsed := time.Since(start)

			if output != "" {
				if err := os.WriteFile(output, []byte(result.Content), 0o644); err != nil {
					return fmt.Errorf("writing output file: %w", err)
				}
			}

			if a.jsonOut {
				summary := summarize(result, wptl.ResolveLanguage(target).Code, elapsed)
				if output == "" {
					summary.Content = result.Content
				}
				return a.writeJSON(summary)
			}

			if output == "" {
				if _, err := io.WriteString(a.stdout, result.Content); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			a.printStats(result, elapsed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Target language code or name (e.g. es, German)")
	cmd.Flags().StringVar(&model, "model", "", "Model id (default: translation.model)")
	cmd.Flags().StringVar(&source, "source", "", "Source language (default: translation.source, or detected)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// readInput reads path, or stdin when path is "-".
func readInput(stdin io.Reader, path string) (string, string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), filepath.Base(path), nil
}
