package cli

import (
	"context"
	"errors"
	"time"
)

var errServerUnhealthy = errors.New("server is unhealthy")

func (c *Cli) runHealth(ctx context.Context) error {
	health, err := c.apiClient.Health(ctx)
	if err != nil {
		return err
	}

	c.io.Printf("Status:    %s\n", health.Status)
	c.io.Printf("Database:  %s\n", health.Database)
	c.io.Printf("Timestamp: %s\n", health.Timestamp.Format(time.RFC3339))

	if health.Status != "healthy" {
		return errServerUnhealthy
	}
	return nil
}
