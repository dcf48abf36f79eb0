package identity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
)

// MetadataWriter links a Clerk account to the internal user id.
type MetadataWriter interface {
	SetUserID(ctx context.Context, clerkID, userID string) error
}

type Clerk struct {
	users *user.Client
}

func NewClerk(secretKey string) *Clerk {
	return newClerk(&clerk.ClientConfig{
		BackendConfig: clerk.BackendConfig{Key: clerk.String(secretKey)},
	})
}

func newClerk(cfg *clerk.ClientConfig) *Clerk {
	return &Clerk{users: user.NewClient(cfg)}
}

// SetUserID stores {"userId": userID} in the account's public metadata.
func (c *Clerk) SetUserID(ctx context.Context, clerkID, userID string) error {
	raw, err := json.Marshal(map[string]string{"userId": userID})
	if err != nil {
		return err
	}
	metadata := json.RawMessage(raw)

	if _, err := c.users.UpdateMetadata(ctx, clerkID, &user.UpdateMetadataParams{
		PublicMetadata: &metadata,
	}); err != nil {
		return fmt.Errorf("clerk update metadata of %s: %w", clerkID, err)
	}
	return nil
}
