package proc

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
)

var allMeansStats = []string{"N", "MEAN", "MEDIAN", "STD", "MIN", "MAX"}

type meansSummary struct {
	n              int
	mean           float64
	median         float64
	std            float64
	min            float64
	max            float64
}

func summarize(vals []float64) meansSummary {
	s := meansSummary{n: len(vals)}
	if s.n == 0 {
		s.mean, s.median, s.std, s.min, s.max = math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}
	sorted := append([]float64{}, vals...)
	sort.Float64s(sorted)
	s.min, s.max = sorted[0], sorted[len(sorted)-1]
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		s.median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		s.median = sorted[mid]
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	s.mean = sum / float64(s.n)
	if s.n > 1 {
		var ss float64
		for _, v := range vals {
			d := v - s.mean
			ss += d * d
		}
		s.std = math.Sqrt(ss / float64(s.n-1))
	} else {
		s.std = math.NaN()
	}
	return s
}

func (s meansSummary) value(stat string) float64 {
	switch stat {
	case "N":
		return float64(s.n)
	case "MEAN":
		return s.mean
	case "MEDIAN":
		return s.median
	case "STD":
		return s.std
	case "MIN":
		return s.min
	case "MAX":
		return s.max
	}
	return math.NaN()
}

// runMeans implements PROC MEANS (spec §4.7): after an optional WHERE
// filter, compute N/MEAN/MEDIAN/STD(sample)/MIN/MAX per VAR variable. An
// empty VAR list falls back to every numeric variable in the input's
// catalog, resolving spec §9 Open Question 2 (documented in DESIGN.md).
func (r *Runner) runMeans(p *ast.Proc) error {
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

	vars := p.VarVariables
	if len(vars) == 0 {
		for _, col := range ds.Catalog {
			if col.Kind == dataset.Numeric {
				vars = append(vars, col.Name)
			}
		}
	}
	stats := p.Stats
	if len(stats) == 0 {
		stats = allMeansStats
	}

	fmt.Fprintln(r.List)
	printTitle(r.List, r.Title)
	fmt.Fprintln(r.List, "The MEANS Procedure")
	header := append([]string{"Variable"}, stats...)
	fmt.Fprintln(r.List, strings.Join(header, "\t"))

	out := dataset.New("WORK", "")
	out.AddColumn(dataset.VariableDef{Name: "VARIABLE", Kind: dataset.Character})
	for _, stat := range stats {
		out.AddColumn(dataset.VariableDef{Name: stat, Kind: dataset.Numeric})
	}

	for _, name := range vars {
		idx := ds.FindColumn(name)
		if idx < 0 {
			r.Log.Warnf("proc means: unknown variable %s", name)
			continue
		}
		var vals []float64
		for _, row := range rows {
			if row[idx].Kind == dataset.Numeric && !row[idx].IsMissing() {
				vals = append(vals, row[idx].Num)
			}
		}
		sum := summarize(vals)
		line := make([]string, 0, len(stats)+1)
		line = append(line, name)
		outRow := make(dataset.Row, len(stats)+1)
		outRow[0] = dataset.StrCell(strings.ToUpper(name))
		for i, stat := range stats {
			v := sum.value(stat)
			line = append(line, fmt.Sprintf("%g", v))
			outRow[i+1] = dataset.NumCell(v)
		}
		fmt.Fprintln(r.List, strings.Join(line, "\t"))
		out.AppendRow(outRow)
	}

	if p.Out.Name != "" {
		outLib, err := r.resolveLibrary(p.Out.Libref)
		if err != nil {
			return err
		}
		return outLib.SaveDataset(p.Out.Name, out)
	}
	return nil
}
