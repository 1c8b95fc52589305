package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/adrianpk/stopgate/internal/policy"
)

// RunRules prints the effective change-type registry in evaluation order.
func RunRules(reg *policy.Registry, verbose bool, out io.Writer) error {
	if !verbose {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPATTERNS\tCHECKS")
		for _, ct := range reg.ChangeTypes() {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", ct.ID, ct.Name, len(ct.Patterns), len(ct.Checks))
		}
		return tw.Flush()
	}

	for i, ct := range reg.ChangeTypes() {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%s)\n", ct.ID, ct.Name)
		fmt.Fprintln(out, "  patterns:")
		for _, p := range ct.Patterns {
			fmt.Fprintf(out, "    %s\n", p)
		}
		fmt.Fprintln(out, "  checks:")
		for _, c := range ct.Checks {
			fmt.Fprintf(out, "    - %s\n", c)
		}
	}
	return nil
}
