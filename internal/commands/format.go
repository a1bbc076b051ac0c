package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/pembukuan-dev/pembukuan/internal/money"
	"github.com/pembukuan-dev/pembukuan/internal/paging"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(w io.Writer, cols ...any) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		if d, ok := c.(decimal.Decimal); ok {
			c = money.Format(d)
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

func pageFooter[T any](w io.Writer, p paging.Page[T]) {
	if p.Total == 0 {
		fmt.Fprintln(w, "no results")
		return
	}
	fmt.Fprintf(w, "page %d/%d (%d-%d of %d)", p.Number, p.Pages, p.First(), p.Last(), p.Total)
	if p.HasPrev() {
		fmt.Fprintf(w, "  prev: --page %d", min(p.Number-1, p.Pages))
	}
	if p.HasNext() {
		fmt.Fprintf(w, "  next: --page %d", p.Number+1)
	}
	fmt.Fprintln(w)
}

// warn prints a reconciliation or advisory message on stderr.
func warn(w io.Writer, err error) {
	fmt.Fprintf(w, "warning: %v\n", err)
}

func formatAmount(d decimal.Decimal) string {
	return money.Rupiah(d)
}
