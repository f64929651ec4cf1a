package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/calcbread/internal/client/storage"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	session, err := c.sessions.GetSession(ctx)
	if errors.Is(err, storage.ErrSessionNotFound) {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'calcbread login' to authenticate.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Email: %s\n", session.Email)
	c.io.Printf("Token expires: %s\n", session.ExpiresAt.Format(time.RFC3339))

	if session.Expired(c.now()) {
		c.io.Println("⚠️  Token has expired. Please login again.")
		return nil
	}

	remaining := session.ExpiresAt.Sub(c.now())
	c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))

	return nil
}
