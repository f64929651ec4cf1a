package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/iudanet/calcbread/internal/client/api"
)

func (c *Cli) runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(c.io)

	var params api.ListParams
	fs.StringVar(&params.Operation, "op", "", "Filter by operation (add, subtract, multiply, divide)")
	fs.IntVar(&params.Skip, "skip", 0, "Number of records to skip")
	fs.IntVar(&params.Limit, "limit", 0, "Maximum number of records (server default if 0)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	token, err := c.activeToken(ctx)
	if err != nil {
		return err
	}

	list, err := c.apiClient.ListCalculations(ctx, token, params)
	if err != nil {
		return err
	}

	scope := "all users"
	if token != "" {
		scope = "your history"
	}
	c.io.Printf("=== Calculations (%s) ===\n", scope)
	c.io.Println()

	if len(list.Items) == 0 {
		c.io.Println("No calculations found.")
		c.io.Println()
		c.io.Println("Use 'calcbread calc <op> <a> <b>' to add one.")
		return nil
	}

	if err := c.printCalculationTable(list.Items); err != nil {
		return fmt.Errorf("failed to print calculations: %w", err)
	}
	c.io.Println()
	c.io.Printf("Showing %d of %d\n", len(list.Items), list.Total)

	return nil
}
