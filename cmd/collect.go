package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fanworks-lab/tagharvest/internal/archive"
)

func newCollectCmd() *cobra.Command {
	var (
		tag       string
		outPrefix string
		rateLimit int
		inFile    string
		baseURL   string
		userAgent string
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Fetch and save every works-index page for a tag",
		Long: `Collect fetches the works index for a tag, discovers the number of pages
from the pagination bar, then fetches every page under a politeness rate
limit. Each page is saved as raw HTML next to a YAML sidecar recording how
and when it was fetched.

The archive asks bulk fetchers to identify themselves, so set a User-Agent
with contact details via --user-agent or the ARCHIVE_USER_AGENT environment
variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userAgent == "" {
				userAgent = os.Getenv("ARCHIVE_USER_AGENT")
			}
			if userAgent == "" {
				return fmt.Errorf("no User-Agent configured; set --user-agent or ARCHIVE_USER_AGENT with contact details")
			}

			client := archive.NewClient(archive.Config{
				BaseURL:        baseURL,
				UserAgent:      userAgent,
				PagesPerMinute: rateLimit,
			})

			return client.Collect(cmd.Context(), tag, outPrefix, inFile)
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "Star Trek: Deep Space Nine", "Tag whose works index to collect")
	cmd.Flags().StringVarP(&outPrefix, "out-prefix", "o", "", "Prefix for output filenames")
	cmd.Flags().IntVarP(&rateLimit, "rate-limit", "r", 6, "Maximum pages fetched per minute (0 for no limit)")
	cmd.Flags().StringVarP(&inFile, "infile", "i", "", "Saved index page to discover the page count from (handy for testing)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Archive base URL (default archiveofourown.org)")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "User-Agent header with operator contact details")

	return cmd
}
