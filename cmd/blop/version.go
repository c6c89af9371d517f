package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"blop/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show blop build metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		full, _ := cmd.Flags().GetBool("full")
		p := versionPayload{Tool: "blop", Version: version.String()}
		if full {
			p.GitCommit = valueOrUnknown(version.GitCommit)
			p.BuildDate = valueOrUnknown(version.BuildDate)
		}
		switch strings.ToLower(format) {
		case "pretty":
			renderVersionPretty(cmd.OutOrStdout(), p)
			return nil
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}
		return errors.Newf("unsupported format %q (must be pretty or json)", format)
	},
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().Bool("full", false, "include commit and build date")
}

func renderVersionPretty(out io.Writer, p versionPayload) {
	fmt.Fprintf(out, "blop %s\n", version.Pretty(p.Version))
	if p.GitCommit != "" {
		fmt.Fprintf(out, "commit: %s\n", p.GitCommit)
	}
	if p.BuildDate != "" {
		fmt.Fprintf(out, "built:  %s\n", p.BuildDate)
	}
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
