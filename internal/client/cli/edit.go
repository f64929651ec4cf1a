package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	pkgapi "github.com/iudanet/calcbread/pkg/api"
)

func (c *Cli) runEdit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("missing calculation ID. Usage: calcbread edit <id> [-op OP] [-a N] [-b N]")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(c.io)
	op := fs.String("op", "", "New operation")
	a := fs.Float64("a", 0, "New first operand")
	b := fs.Float64("b", 0, "New second operand")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	// Отправляем только явно заданные флаги: -a 0 отличается от отсутствия -a
	var req pkgapi.UpdateCalculationRequest
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "op":
			req.Operation = op
		case "a":
			req.OperandA = a
		case "b":
			req.OperandB = b
		}
	})
	if req.Operation == nil && req.OperandA == nil && req.OperandB == nil {
		return errors.New("nothing to update: set at least one of -op, -a, -b")
	}

	token, err := c.activeToken(ctx)
	if err != nil {
		return err
	}

	calc, err := c.apiClient.UpdateCalculation(ctx, token, id, req)
	if err != nil {
		return err
	}

	c.io.Println("✓ Calculation updated")
	c.io.Println()
	c.printCalculation(calc)

	return nil
}
