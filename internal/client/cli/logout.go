package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/calcbread/internal/client/storage"
)

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	// Токены без состояния: на сервере отзывать нечего
	err := c.sessions.DeleteSession(ctx)
	if errors.Is(err, storage.ErrSessionNotFound) {
		c.io.Println("Not logged in.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Println("✓ Logout successful!")
	c.io.Println("Your local session has been deleted.")

	return nil
}
