package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aleister1102/webwatch/internal/models"
	"github.com/aleister1102/webwatch/internal/preview"
	"github.com/spf13/cobra"
)

var previewOpts struct {
	mode     string
	selector string
	start    string
	end      string
	regex    string
	headers  []string
	asJSON   bool
}

func init() {
	f := previewCmd.Flags()
	f.StringVar(&previewOpts.mode, "mode", "", "Extraction mode to try: full, selector, markers or regex.")
	f.StringVar(&previewOpts.selector, "selector", "", "Selector for selector mode.")
	f.StringVar(&previewOpts.start, "start", "", "Start marker for markers mode.")
	f.StringVar(&previewOpts.end, "end", "", "End marker for markers mode.")
	f.StringVar(&previewOpts.regex, "regex", "", "Pattern for regex mode.")
	f.StringArrayVarP(&previewOpts.headers, "header", "H", nil, "Request header as 'Name: value'. Repeatable.")
	f.BoolVar(&previewOpts.asJSON, "json", false, "Print the full result as JSON.")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview <url>",
	Short: "Fetches a page once, sanitizes it and optionally tries an extraction on it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}

		req := preview.Request{URL: args[0], Headers: map[string]string{}}
		for _, h := range previewOpts.headers {
			name, value, ok := strings.Cut(h, ":")
			if !ok {
				return fmt.Errorf("invalid header %q, want 'Name: value'", h)
			}
			req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
		if previewOpts.mode != "" || previewOpts.selector != "" || previewOpts.start != "" || previewOpts.regex != "" {
			site := models.SiteConfig{
				ID:          "preview",
				URL:         args[0],
				Mode:        models.ExtractionMode(previewOpts.mode),
				SelectorCSS: previewOpts.selector,
				StartMarker: previewOpts.start,
				EndMarker:   previewOpts.end,
				Regex:       previewOpts.regex,
			}
			req.Site = &site
		}

		res, err := preview.NewPreviewer(previewConfig(cfg), quietLogger(cfg)).Preview(cmd.Context(), req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if previewOpts.asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		fmt.Fprintf(out, "url:    %s\nstatus: %d\nsize:   %d\ntitle:  %s\n", res.URL, res.Status, res.Size, res.Title)
		if ext := res.Extraction; ext != nil {
			if ext.OK {
				fmt.Fprintf(out, "hash:   %s\n", res.Digest)
			} else {
				fmt.Fprintf(out, "error:  %s\n", ext.Error)
			}
			fmt.Fprintf(out, "excerpt: %s\n", res.Excerpt)
		}
		return nil
	},
}
