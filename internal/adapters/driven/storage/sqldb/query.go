package sqldb

import (
	"math"
	"strings"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
)

// query accumulates a statement and its arguments.
type query struct {
	d    Dialect
	sb   strings.Builder
	args []any
}

func (q *query) arg(v any) string {
	q.args = append(q.args, v)
	return q.d.Placeholder(len(q.args))
}

// BuildScan returns the SELECT statement for a scan of columns, with the
// bound's prefilter on the position columns.
func BuildScan(d Dialect, req driven.ScanRequest, columns []string) (string, []any) {
	q := &query{d: d}

	q.sb.WriteString("SELECT ")
	for i, col := range columns {
		if i > 0 {
			q.sb.WriteString(", ")
		}
		q.sb.WriteString(d.Quote(col))
	}
	q.sb.WriteString(" FROM ")
	q.sb.WriteString(d.QuoteTable(req.Table))

	if req.Bound != nil {
		if where := q.boundPredicate(req); where != "" {
			q.sb.WriteString(" WHERE ")
			q.sb.WriteString(where)
		}
	}
	return q.sb.String(), q.args
}

// boundPredicate renders the prefilter for req.Bound. The predicate is
// inclusive so that rows on the bound's edge reach the exact check. It never
// excludes a row the exact check would accept, whatever range RA is stored in.
func (q *query) boundPredicate(req driven.ScanRequest) string {
	b := req.Bound
	ra := q.d.Quote(req.RAColumn)
	dec := q.d.Quote(req.DecColumn)

	var decLo, decHi, halfRA float64
	switch b.Kind {
	case domain.BoundBox:
		decLo, decHi = b.Dec-b.HalfDec, b.Dec+b.HalfDec
		halfRA = b.HalfRA
	case domain.BoundCone:
		decLo, decHi = b.DecRange()
		halfRA = coneHalfRA(b.Radius, math.Max(math.Abs(decLo), math.Abs(decHi)))
	default:
		return ""
	}

	parts := []string{
		dec + " >= " + q.arg(decLo),
		dec + " <= " + q.arg(decHi),
	}
	if halfRA < 180 {
		lo := normRA(b.RA - halfRA)
		hi := normRA(b.RA + halfRA)
		if lo <= hi {
			// RA stored outside [0, 360) is left to the exact check.
			parts = append(parts, "("+ra+" >= "+q.arg(lo)+" AND "+ra+" <= "+q.arg(hi)+
				" OR "+ra+" < "+q.arg(0.0)+" OR "+ra+" >= "+q.arg(360.0)+")")
		} else {
			parts = append(parts, "("+ra+" >= "+q.arg(lo)+" OR "+ra+" <= "+q.arg(hi)+")")
		}
	}
	return strings.Join(parts, " AND ")
}

// coneHalfRA returns the RA half-width of a cone of radius r whose
// declinations reach maxDec. It is 180 when the cone covers a pole.
func coneHalfRA(r, maxDec float64) float64 {
	const rad = math.Pi / 180
	if maxDec >= 90 {
		return 180
	}
	x := math.Sin(r*rad) / math.Cos(maxDec*rad)
	if x >= 1 {
		return 180
	}
	return math.Asin(x)/rad + 1e-9
}

// normRA maps an angle into [0, 360).
func normRA(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
