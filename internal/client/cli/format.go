package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	pkgapi "github.com/iudanet/calcbread/pkg/api"
)

var operationSymbols = map[string]string{
	"add":      "+",
	"subtract": "-",
	"multiply": "*",
	"divide":   "/",
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// expression форматирует запись как "10 / 4 = 2.5"
func expression(calc *pkgapi.CalculationResponse) string {
	symbol, ok := operationSymbols[calc.Operation]
	if !ok {
		symbol = calc.Operation
	}
	return fmt.Sprintf("%s %s %s = %s",
		formatNumber(calc.OperandA), symbol, formatNumber(calc.OperandB), formatNumber(calc.Result))
}

func owner(calc *pkgapi.CalculationResponse) string {
	if calc.UserID == nil {
		return "anonymous"
	}
	return "user " + strconv.FormatInt(*calc.UserID, 10)
}

func (c *Cli) printCalculation(calc *pkgapi.CalculationResponse) {
	updated := "-"
	if calc.UpdatedAt != nil {
		updated = calc.UpdatedAt.Format(time.RFC3339)
	}

	c.io.Printf("ID:         %d\n", calc.ID)
	c.io.Printf("Operation:  %s\n", calc.Operation)
	c.io.Printf("Expression: %s\n", expression(calc))
	c.io.Printf("Owner:      %s\n", owner(calc))
	c.io.Printf("Created:    %s\n", calc.CreatedAt.Format(time.RFC3339))
	c.io.Printf("Updated:    %s\n", updated)
}

func (c *Cli) printCalculationTable(items []pkgapi.CalculationResponse) error {
	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tOPERATION\tEXPRESSION\tOWNER\tCREATED")
	for i := range items {
		calc := &items[i]
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			calc.ID, calc.Operation, expression(calc), owner(calc), calc.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
