package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JailtonJunior94/aeon-kit/pkg/debounce"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/JailtonJunior94/aeon-kit/pkg/unsplash"
	"github.com/spf13/cobra"
)

func newSearchCommand(a *app) *cobra.Command {
	var (
		delay   time.Duration
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search Unsplash as you type",
		Long: `Reads one query per line from stdin. A query is sent only after no new line
arrived for the debounce delay; intermediate lines are dropped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("delay") {
				delay = a.cfg.SearchDebounce
			}
			photos := unsplash.NewClient(a.logger, a.cfg.UnsplashAccessKey, unsplash.WithBaseURL(a.cfg.UnsplashBaseURL))
			return a.search(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), photos, delay, perPage)
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", 500*time.Millisecond, "debounce delay (default $SEARCH_DEBOUNCE)")
	cmd.Flags().IntVar(&perPage, "per-page", 5, "results per query")
	return cmd
}

func (a *app) search(ctx context.Context, in io.Reader, out io.Writer, photos unsplash.PhotoSource, delay time.Duration, perPage int) error {
	query := debounce.New("")
	defer query.Close()

	done := make(chan struct{})
	defer close(done)

	settled := make(chan string)
	query.OnSettle(func(q string) {
		select {
		case settled <- q:
		case <-done:
		}
	})

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-done:
				return
			}
		}
	}()

	searched := ""
	eof := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				eof = true
				lines = nil
				if !query.Pending() && query.Get() == searched {
					return nil
				}
				continue
			}
			query.Observe(line, delay)
		case q := <-settled:
			searched = q
			a.printGallery(ctx, out, q, unsplash.Search(ctx, photos, q, 1, perPage))
			if eof && !query.Pending() {
				return nil
			}
		}
	}
}

func (a *app) printGallery(ctx context.Context, out io.Writer, query string, gallery unsplash.Gallery) {
	if query == "" {
		fmt.Fprintln(out, "(empty query)")
		return
	}
	if gallery.Err != nil {
		a.logger.Warn(ctx, "showing placeholders", observability.String("query", query), observability.Error(gallery.Err))
	}

	fmt.Fprintf(out, "%q: %d results\n", query, gallery.TotalResults)
	for _, photo := range gallery.Photos {
		description := ""
		if photo.AltDescription != nil {
			description = *photo.AltDescription
		}
		fmt.Fprintf(out, "  %s  %s  %s\n", photo.ID, photo.URLs.Small, description)
	}
}
