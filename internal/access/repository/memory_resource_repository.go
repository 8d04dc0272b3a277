package repository

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/allisson/roleguard/internal/access/domain"
)

// MemoryResourceRepository keeps the resource catalog in process memory.
type MemoryResourceRepository struct {
	mu        sync.RWMutex
	order     []string
	resources map[string]domain.Resource
}

// Create stores a new resource.
func (r *MemoryResourceRepository) Create(_ context.Context, resource *domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resources[resource.ID]; ok {
		return domain.ErrResourceAlreadyExists
	}
	r.resources[resource.ID] = copyResource(*resource)
	r.order = append(r.order, resource.ID)
	return nil
}

// Get retrieves a resource by ID.
func (r *MemoryResourceRepository) Get(_ context.Context, resourceID string) (*domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resource, ok := r.resources[resourceID]
	if !ok {
		return nil, domain.ErrResourceNotFound
	}
	resource = copyResource(resource)
	return &resource, nil
}

// List returns matching resources in registration order.
func (r *MemoryResourceRepository) List(_ context.Context, filter domain.ResourceFilter) ([]domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	resources := make([]domain.Resource, 0, len(r.order))
	for _, id := range r.order {
		resource := r.resources[id]
		if filter.Type != "" && resource.Type != filter.Type {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(resource.Title), query) {
			continue
		}
		resources = append(resources, copyResource(resource))
	}
	return resources, nil
}

func copyResource(resource domain.Resource) domain.Resource {
	resource.RequiredRoles = slices.Clone(resource.RequiredRoles)
	resource.Metadata = maps.Clone(resource.Metadata)
	return resource
}

// NewMemoryResourceRepository creates an empty MemoryResourceRepository.
func NewMemoryResourceRepository() *MemoryResourceRepository {
	return &MemoryResourceRepository{resources: make(map[string]domain.Resource)}
}
