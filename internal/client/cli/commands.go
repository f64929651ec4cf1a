package cli

import (
	"context"
	"fmt"
)

// Run выполняет команду args[0] с аргументами args[1:]
func (c *Cli) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: none given", ErrUnknownCommand)
	}

	command, rest := args[0], args[1:]

	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "me":
		return c.runMe(ctx)
	case "calc":
		return c.runCalc(ctx, rest)
	case "list":
		return c.runList(ctx, rest)
	case "get":
		return c.runGet(ctx, rest)
	case "edit":
		return c.runEdit(ctx, rest)
	case "delete":
		return c.runDelete(ctx, rest)
	case "health":
		return c.runHealth(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}
