package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/iudanet/calcbread/internal/client/api"
)

func (c *Cli) runMe(ctx context.Context) error {
	session, err := c.requireSession(ctx)
	if err != nil {
		return err
	}

	user, err := c.apiClient.Me(ctx, session.Token)
	if err != nil {
		if api.StatusCode(err) == http.StatusUnauthorized {
			return errSessionExpired
		}
		return err
	}

	c.io.Println("=== Profile ===")
	c.io.Printf("ID:       %d\n", user.ID)
	c.io.Printf("Email:    %s\n", user.Email)
	c.io.Printf("Username: %s\n", user.Username)
	c.io.Printf("Active:   %t\n", user.IsActive)
	c.io.Printf("Created:  %s\n", user.CreatedAt.Format(time.RFC3339))

	return nil
}
