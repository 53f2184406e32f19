package ports

import (
	"context"

	"github.com/wadjakorntonsri/shortlinks/pkg/core/domain"
)

// LinkRepository defines storage operations for links
type LinkRepository interface {
	Create(ctx context.Context, link *domain.Link) error
	GetByID(ctx context.Context, id int64) (*domain.Link, error)
	List(ctx context.Context) ([]domain.Link, error)
	IncrementCounter(ctx context.Context, id int64) error
}

// StatsClient fetches raw link statistics from the external analytics API
type StatsClient interface {
	LinkStats(ctx context.Context, linkURL string) (*domain.StatsResponse, error)
}

// LinkService defines the business logic operations
type LinkService interface {
	CreateLink(ctx context.Context, name, url string) (*domain.Link, error)
	ListLinks(ctx context.Context) ([]domain.Link, error)
	Visit(ctx context.Context, id int64) (string, error)
	ClickStats(ctx context.Context, id int64) (*domain.ClickStats, error)
}
