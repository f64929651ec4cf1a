package cli

import (
	"context"
	"errors"
)

func (c *Cli) runGet(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("missing calculation ID. Usage: calcbread get <id>")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	token, err := c.activeToken(ctx)
	if err != nil {
		return err
	}

	calc, err := c.apiClient.GetCalculation(ctx, token, id)
	if err != nil {
		return err
	}

	c.io.Println("=== Calculation Details ===")
	c.io.Println()
	c.printCalculation(calc)

	return nil
}
