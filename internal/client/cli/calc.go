package cli

import (
	"context"
	"errors"

	pkgapi "github.com/iudanet/calcbread/pkg/api"
)

func (c *Cli) runCalc(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: calcbread calc <add|subtract|multiply|divide> <a> <b>")
	}

	a, err := parseOperand("a", args[1])
	if err != nil {
		return err
	}
	b, err := parseOperand("b", args[2])
	if err != nil {
		return err
	}

	token, err := c.activeToken(ctx)
	if err != nil {
		return err
	}

	calc, err := c.apiClient.CreateCalculation(ctx, token, pkgapi.CreateCalculationRequest{
		Operation: args[0],
		OperandA:  &a,
		OperandB:  &b,
	})
	if err != nil {
		return err
	}

	c.io.Printf("%s\n", expression(calc))
	c.io.Printf("Saved as #%d (%s)\n", calc.ID, owner(calc))

	return nil
}
