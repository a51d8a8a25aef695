package console

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/message"

	"github.com/okian/matchdesk/internal/adapters/repository"
	"github.com/okian/matchdesk/internal/domain/model"
)

const (
	tabMinWidth = 0
	tabWidth    = 4
	tabPadding  = 2
)

// renderTable writes rows as aligned columns under the store header,
// followed by a row count.
func renderTable(w io.Writer, p *message.Printer, rows []model.Assignment) error {
	tw := tabwriter.NewWriter(w, tabMinWidth, tabWidth, tabPadding, ' ', 0)
	fmt.Fprintln(tw, strings.Join(repository.Columns, "\t"))
	for _, a := range rows {
		ids := make([]string, len(a.ProfessionalIDs))
		for i, id := range a.ProfessionalIDs {
			ids[i] = id.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			strings.Join(ids, ", "),
			strings.Join(a.ProfessionalNames, ", "),
			a.Subject,
			a.DueDate,
			a.DemandID,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, countLine(p, len(rows), "row", "rows")+"\n")
	return err
}

// countLine formats n with the printer's locale and the matching noun.
func countLine(p *message.Printer, n int, one, many string) string {
	noun := many
	if n == 1 {
		noun = one
	}
	return p.Sprintf("%d %s", n, noun)
}
