package cli

import (
	"context"
	"errors"
	"fmt"

	pkgapi "github.com/iudanet/calcbread/pkg/api"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password confirmation: %w", err)
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	c.io.Println()
	c.io.Println("Registering...")

	token, err := c.apiClient.Register(ctx, pkgapi.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	session, err := c.saveToken(ctx, email, token)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("Email: %s\n", session.Email)
	c.io.Printf("Access token expires in: %d seconds\n", token.ExpiresIn)

	return nil
}
