package cli

import (
	"context"
	"errors"
)

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("missing calculation ID. Usage: calcbread delete <id>")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	token, err := c.activeToken(ctx)
	if err != nil {
		return err
	}

	if err := c.apiClient.DeleteCalculation(ctx, token, id); err != nil {
		return err
	}

	c.io.Printf("✓ Calculation #%d deleted\n", id)

	return nil
}
