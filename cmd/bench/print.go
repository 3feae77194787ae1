package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/drakos74/free-learn/internal/bench"
	learnmath "github.com/drakos74/free-learn/internal/math"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
)

// Print writes the dataset summary, a table of the reports and the error curve of every trained network.
func Print(w io.Writer, summary bench.Summary, reports []bench.Report) {
	fmt.Fprintf(w, "records: %d dim: %d classes: %d train: %d validation: %d test: %d\n",
		summary.Records, summary.Dim, summary.Classes, summary.Train, summary.Validation, summary.Test)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"model", "k", "params", "validation", "test", "duration"})
	for _, r := range reports {
		k := ""
		if r.K > 0 {
			k = strconv.Itoa(r.K)
		}
		table.Append([]string{
			r.Model,
			k,
			params(r.Params),
			learnmath.Format(r.Validation),
			learnmath.Format(r.Test),
			r.Duration.String(),
		})
	}
	table.Render()

	for _, r := range reports {
		if len(r.Errors) < 2 {
			continue
		}
		caption := fmt.Sprintf("%s epoch error (trend %s)", r.Model, learnmath.Format(r.Trend))
		fmt.Fprintln(w, asciigraph.Plot(r.Errors, asciigraph.Height(10), asciigraph.Caption(caption)))
	}
}

func params(pp map[string]string) string {
	keys := make([]string, 0, len(pp))
	for k := range pp {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := ""
	for i, k := range keys {
		if i > 0 {
			s += " "
		}
		s += k + "=" + pp[k]
	}
	return s
}
