// Package report renders the final coefficient table. The regression engine
// exposes the report data structure; this package is its console consumer.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/anvgorok/repshape/internal/models"
)

// Legend is printed below the coefficient table. The reproduced study marks
// significance with stars from Wald tests; this pipeline does not compute
// p-values, so the stars are declared unavailable instead of fabricated.
const Legend = "* p < .05, ** p < .01, *** p < .001 (p-values not computed in this run; stars unavailable)"

// Write renders the coefficient table to w: one row per fitted shape in
// fixed archetype order, the five named coefficients in fixed column order,
// values rounded to three decimals. Non-convergent segments are flagged.
func Write(w io.Writer, r *models.Report) error {
	if _, err := fmt.Fprintln(w, "=== Logistic Regression Coefficients by Expertise Shape ==="); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	header := append([]string{"Shape"}, models.CoefficientOrder...)
	header = append(header, "Intercept", "N")
	table.Header(header)

	for _, shape := range models.AllShapes {
		seg, ok := r.Segments[shape]
		if !ok {
			continue
		}
		row := []string{string(shape)}
		for _, name := range models.CoefficientOrder {
			row = append(row, formatCoef(seg.Coefficient(name), seg.Converged))
		}
		row = append(row,
			formatCoef(round3(seg.Intercept), seg.Converged),
			strconv.Itoa(seg.Observations),
		)
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append row for shape %s: %w", shape, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	for _, shape := range models.AllShapes {
		seg, ok := r.Segments[shape]
		if !ok || seg.Warning == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "warning (%s): %s\n", shape, seg.Warning); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, Legend)
	return err
}

// WriteShapeCounts renders the classified-user distribution.
func WriteShapeCounts(w io.Writer, r *models.Report) error {
	if _, err := fmt.Fprintln(w, "Shape distribution:"); err != nil {
		return err
	}
	for _, shape := range models.AllShapes {
		if _, err := fmt.Fprintf(w, "  %s-shaped: %d\n", shape, r.ShapeCounts[shape]); err != nil {
			return err
		}
	}
	return nil
}

// formatCoef renders a rounded coefficient, marking provisional values from
// non-convergent fits.
func formatCoef(v float64, converged bool) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	if !converged {
		s += " (prov.)"
	}
	return s
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
