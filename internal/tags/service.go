package tags

import (
	"context"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RepositoryPort defines data access methods for tags.
type RepositoryPort interface {
	List(ctx context.Context) ([]Tag, error)
}

// ListCache is the single-slot cache the service fronts the store with.
// Implemented by lookup.TagListCache.
type ListCache interface {
	Get(ctx context.Context) ([]Tag, bool)
	Set(ctx context.Context, tags []Tag)
	Invalidate(ctx context.Context)
}

// Service serves the tag list, cache first.
type Service struct {
	repo     RepositoryPort
	cache    ListCache
	collator *collate.Collator
}

// NewService builds Service instance. cache may be nil.
func NewService(repo RepositoryPort, cache ListCache) *Service {
	return &Service{
		repo: repo,
		cache: cache,
		// Tag names are Icelandic; byte order misplaces Þ, Æ and Ö.
		collator: collate.New(language.Icelandic),
	}
}

// List returns all tags in collated order, served from cache when warm.
func (s *Service) List(ctx context.Context) ([]Tag, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			return cached, nil
		}
	}

	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return s.collator.CompareString(list[i].Name, list[j].Name) < 0
	})

	if s.cache != nil {
		s.cache.Set(ctx, list)
	}
	return list, nil
}

// Invalidate drops the cached list; the next List rebuilds it.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
