package terminal

import "context"

// Repository defines data access for terminal configurations.
type Repository interface {
	Migrate(ctx context.Context) error
	Create(ctx context.Context, t *Terminal) error
	GetByID(ctx context.Context, id string) (*Terminal, error)
	List(ctx context.Context) ([]*Terminal, error)
	ListHobexWithCredentials(ctx context.Context) ([]*Terminal, error)
	Update(ctx context.Context, t *Terminal) error
	UpdateToken(ctx context.Context, id string, token string) error
}
