// Package report renders computed workspace results for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/costcalc/internal/pricing"
)

const currency = "€"

// Generate writes a per-scenario cost table followed by the comparative
// summary.
func Generate(out io.Writer, res pricing.Result) error {
	w := &errWriter{w: out}

	w.println("costcalc: Riepilogo costi per scenario")
	w.println(strings.Repeat("=", 38))
	w.println("")

	if len(res.Scenarios) == 0 {
		w.println("Nessuno scenario configurato.")
		return w.err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	tw2 := &errWriter{w: tw}
	tw2.printf("SCENARIO\tUTENTI\tSERVIZI/MESE\tMEDIA/MESE\tTOTALE/MESE\tTOTALE/ANNO\tPER UTENTE\tDELTA\t\n")
	for _, sr := range res.Scenarios {
		tw2.printf("%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			sr.Scenario.Name,
			sr.Scenario.UserCount,
			money(sr.Totals.Services),
			money(sr.Totals.Media),
			money(sr.Totals.Monthly),
			money(sr.Totals.Annual),
			currency+decimal.NewFromFloat(sr.CostPerUser).StringFixed(4),
			percent(sr.DeltaPercent),
		)
	}
	if tw2.err != nil {
		return tw2.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	w.println("")
	writeSummary(w, res.Summary)
	return w.err
}

func writeSummary(w *errWriter, s pricing.Summary) {
	w.println("Confronto")
	w.println("---------")
	w.printf("Scenario più economico:  %s (%s/anno)\n", s.CheapestName, money(s.CheapestTotal))
	w.printf("Scenario più costoso:    %s (%s/anno)\n", s.CostliestName, money(s.CostliestTotal))
	w.printf("Differenza:              %s\n", money(s.Spread))
	w.printf("Media annuale:           %s\n", money(s.Mean))
}

func money(v float64) string {
	return currency + decimal.NewFromFloat(v).StringFixed(2)
}

func percent(v float64) string {
	d := decimal.NewFromFloat(v).Round(1)
	if d.IsPositive() {
		return "+" + d.StringFixed(1) + "%"
	}
	return d.StringFixed(1) + "%"
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
