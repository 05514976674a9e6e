package prep

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// loanCSV renders n applications with exactly `approved` approvals spread
// evenly over the rows. cols limits and orders the columns.
func loanCSV(n, approved int, target func(ok bool) string, cols ...string) string {
	if len(cols) == 0 {
		cols = []string{"name", "city", "income", "credit_score", "loan_amount", "years_employed", "points", "loan_approved"}
	}
	var b strings.Builder
	b.WriteString(strings.Join(cols, ","))
	b.WriteString("\n")
	for i := 0; i < n; i++ {
		ok := i*approved/n != (i+1)*approved/n
		vals := map[string]string{
			"name":           fmt.Sprintf("Applicant %d", i),
			"city":           []string{"Austin", "Denver", "Boston"}[i%3],
			"income":         fmt.Sprint(25000 + (i*7919)%95000),
			"credit_score":   fmt.Sprint(300 + (i*131)%551),
			"loan_amount":    fmt.Sprint(1000 + (i*4271)%49000),
			"years_employed": fmt.Sprintf("%d.5", i%40),
			"points":         fmt.Sprint((i * 17) % 101),
			"loan_approved":  target(ok),
		}
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = vals[c]
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}
	return b.String()
}

func pyBool(ok bool) string {
	if ok {
		return "True"
	}
	return "False"
}

func writeInput(t testing.TB, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "loan_approval.csv")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}
