package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/brokengap/internal/app"
	"github.com/okian/brokengap/internal/domain/ranking"
	"github.com/okian/brokengap/internal/domain/screening"
)

func printSummary(w io.Writer, res *app.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", res.RunID)
	fmt.Fprintf(tw, "rule set\t%s\n", res.RuleSet)
	fmt.Fprintf(tw, "source\t%s\n", res.SourceID)
	fmt.Fprintf(tw, "records loaded\t%d\n", res.Records)
	fmt.Fprintf(tw, "records excluded\t%d\n", len(res.Excluded))
	if !res.FromCache {
		fmt.Fprintf(tw, "pairs evaluated\t%d\n", res.Tally.Total())
	}
	fmt.Fprintf(tw, "candidates\t%d\n", len(res.Candidates))
	fmt.Fprintf(tw, "space groups\t%d\n", res.SpaceGroups())
	fmt.Fprintf(tw, "from cache\t%t\n", res.FromCache)
	if res.CacheErr != nil {
		fmt.Fprintf(tw, "cache error\t%v\n", res.CacheErr)
	}
	fmt.Fprintf(tw, "took\t%s\n", res.Took)
	return tw.Flush()
}

// printGroups prints the best candidate of every space group and, when top
// is positive, the top candidates of each group.
func printGroups(w io.Writer, ranked []screening.Candidate, scoreLattice bool, top int) error {
	best := ranking.BestPerSpaceGroup(ranked)
	fmt.Fprintln(w)
	if err := printTable(w, best, scoreLattice); err != nil {
		return err
	}
	if top <= 0 {
		return nil
	}
	for i := range best {
		fmt.Fprintf(w, "\n%s (%d)\n", best[i].SpaceGroup, best[i].SpgNum)
		if err := printTable(w, ranking.Group(ranked, best[i].SpgNum, top), scoreLattice); err != nil {
			return err
		}
	}
	return nil
}

func printTable(w io.Writer, cs []screening.Candidate, scoreLattice bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(screening.Columns(scoreLattice), "\t"))
	for i := range cs {
		row := cs[i].Row(scoreLattice)
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		return fmt.Sprintf("%.4f", x)
	default:
		return fmt.Sprint(x)
	}
}
