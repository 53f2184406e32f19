package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wadjakorntonsri/shortlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/shortlinks/pkg/ports"
)

type LinkService struct {
	repo  ports.LinkRepository
	stats ports.StatsClient
}

func NewLinkService(repo ports.LinkRepository, stats ports.StatsClient) *LinkService {
	return &LinkService{repo: repo, stats: stats}
}

func (s *LinkService) CreateLink(ctx context.Context, name, url string) (*domain.Link, error) {
	link, err := domain.NewLink(name, url)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

func (s *LinkService) ListLinks(ctx context.Context) ([]domain.Link, error) {
	return s.repo.List(ctx)
}

// Visit counts one visit and returns the redirect target
func (s *LinkService) Visit(ctx context.Context, id int64) (string, error) {
	link, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if err := s.repo.IncrementCounter(ctx, id); err != nil {
		return "", err
	}

	return link.Destination(), nil
}

// ClickStats asks the analytics API about the link's URL and totals its CLICK events
func (s *LinkService) ClickStats(ctx context.Context, id int64) (*domain.ClickStats, error) {
	link, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp, err := s.stats.LinkStats(ctx, link.URL)
	if err != nil {
		return nil, err
	}

	count, err := countClicks(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Err: err}
	}

	return &domain.ClickStats{
		Count:        count,
		StatusCode:   resp.StatusCode,
		ResponseJSON: resp.Body,
	}, nil
}

func countClicks(body []byte) (int64, error) {
	var doc struct {
		LinkEventStats []domain.EventStat `json:"linkEventStats"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return 0, fmt.Errorf("decode stats response: %w", err)
	}

	var total int64
	for _, stat := range doc.LinkEventStats {
		if stat.Event != "CLICK" {
			continue
		}
		n, err := stat.Count.Int64()
		if err != nil {
			return 0, fmt.Errorf("decode CLICK count %q: %w", stat.Count, err)
		}
		total += n
	}
	return total, nil
}

var _ ports.LinkService = (*LinkService)(nil)
