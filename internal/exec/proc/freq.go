package proc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
)

func cellText(c dataset.Cell) string {
	if c.Kind == dataset.Character {
		return c.Str
	}
	if c.IsMissing() {
		return "."
	}
	return fmt.Sprintf("%g", c.Num)
}

// runFreq implements PROC FREQ (spec §4.7): one-way tabulation for a bare
// variable, two-way for `var1*var2`. CHISQ is recognised but only a
// placeholder statistic is reported, since no corpus library offers a
// chi-square routine this engine can lean on.
func (r *Runner) runFreq(p *ast.Proc) error {
	lib, err := r.resolveLibrary(p.Data.Libref)
	if err != nil {
		return err
	}
	ds, err := lib.GetOrCreateDataset(p.Data.Name)
	if err != nil {
		return err
	}
	rows, err := filterRows(ds, p.Where, r.Log)
	if err != nil {
		return err
	}

	fmt.Fprintln(r.List)
	printTitle(r.List, r.Title)
	fmt.Fprintln(r.List, "The FREQ Procedure")

	for _, pair := range p.FreqPairs {
		if pair[1] == "" {
			if err := r.oneWayFreq(ds, rows, pair[0]); err != nil {
				return err
			}
		} else {
			if err := r.twoWayFreq(ds, rows, pair[0], pair[1]); err != nil {
				return err
			}
		}
	}
	if p.Chisq {
		fmt.Fprintln(r.List, "Chi-Square: statistic not computed (placeholder)")
	}
	return nil
}

func (r *Runner) oneWayFreq(ds *dataset.Dataset, rows []dataset.Row, varName string) error {
	idx := ds.FindColumn(varName)
	if idx < 0 {
		return fmt.Errorf("proc freq: unknown variable %s", varName)
	}
	counts := map[string]int{}
	for _, row := range rows {
		counts[cellText(row[idx])]++
	}
	fmt.Fprintf(r.List, "Table of %s\n", strings.ToUpper(varName))
	for _, k := range sortedKeys(counts) {
		fmt.Fprintf(r.List, "%s\t%d\n", k, counts[k])
	}
	return nil
}

func (r *Runner) twoWayFreq(ds *dataset.Dataset, rows []dataset.Row, a, b string) error {
	ia, ib := ds.FindColumn(a), ds.FindColumn(b)
	if ia < 0 || ib < 0 {
		return fmt.Errorf("proc freq: unknown variable in %s*%s", a, b)
	}
	counts := map[[2]string]int{}
	for _, row := range rows {
		counts[[2]string{cellText(row[ia]), cellText(row[ib])}]++
	}
	fmt.Fprintf(r.List, "Table of %s by %s\n", strings.ToUpper(a), strings.ToUpper(b))
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k[0]+"\x00"+k[1])
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts := strings.SplitN(k, "\x00", 2)
		fmt.Fprintf(r.List, "%s\t%s\t%d\n", parts[0], parts[1], counts[[2]string{parts[0], parts[1]}])
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
