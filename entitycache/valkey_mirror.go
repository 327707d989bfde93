package entitycache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fintari/gramthread/infrastructure/valkey"
)

const mirrorTTL = 24 * time.Hour

// ValkeyMirror keeps user snapshots in Valkey so operators and sibling
// processes can inspect the cache. It is observability only: the in-memory
// registry stays the source of truth for object identity.
type ValkeyMirror struct {
	client *valkey.Client
	prefix string
}

func NewValkeyMirror(client *valkey.Client) *ValkeyMirror {
	return &ValkeyMirror{
		client: client,
		prefix: client.Key("users") + ":",
	}
}

func (m *ValkeyMirror) Store(ctx context.Context, user *User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	cmd := m.client.Inner().B().Set().
		Key(m.prefix + user.ID).
		Value(string(data)).
		Ex(mirrorTTL).
		Build()

	return m.client.Inner().Do(ctx, cmd).Error()
}

// Load fetches a mirrored snapshot. Returns nil without error when the key is
// absent or expired.
func (m *ValkeyMirror) Load(ctx context.Context, id string) (*User, error) {
	cmd := m.client.Inner().B().Get().Key(m.prefix + id).Build()
	data, err := m.client.Inner().Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsNil(err) {
			return nil, nil
		}
		return nil, err
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
