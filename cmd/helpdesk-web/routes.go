package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/helpdesk-io/helpdesk-web/internal/routing"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table",
	RunE:  runRoutes,
}

func runRoutes(cmd *cobra.Command, args []string) error {
	configs, err := routing.DefaultConfigs()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tMETHOD\tPATH\tHANDLER\tMIDDLEWARE")
	for _, r := range routing.Table(configs) {
		mw := strings.Join(r.Middleware, ",")
		if mw == "" {
			mw = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Group, r.Method, r.Path, r.Handler, mw)
	}
	return w.Flush()
}
