package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"blop/gen"
	"blop/internal/codegen"
	"blop/pool"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Validate blop.toml and list the instantiations it declares",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveManifest(cmd, args)
		if err != nil {
			return err
		}
		m, err := codegen.LoadManifest(path)
		if err != nil {
			return err
		}
		reg := gen.NewRegistry()
		units, err := codegen.Plan(m, reg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: package %s, %d tables, %d outputs, %d instantiations\n",
			path, m.Package.Name, len(m.Entries), len(units), reg.Len())
		fmt.Fprint(out, pool.Table(instantiationRows(reg)))
		return nil
	},
}

func init() {
	checkCmd.Flags().String("manifest", "", "path to the manifest (default: search from dir upwards)")
}

func instantiationRows(reg *gen.Registry) [][]string {
	rows := [][]string{{"ELEMENT", "POLICY", "TYPES", "SITES"}}
	for _, e := range reg.Entries() {
		sites := make([]string, len(e.UseSites))
		for i, s := range e.UseSites {
			sites[i] = s.Site
		}
		rows = append(rows, []string{e.Key.Elem, e.Key.Policy, strings.Join(e.Policies, ","), strings.Join(sites, " ")})
	}
	return rows
}
