package services

import (
	"context"
	"strings"

	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/internal/mapping"
	"github.com/GregMSThompson/findash-backend/internal/models"
	"github.com/GregMSThompson/findash-backend/internal/providers"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

type providerStore interface {
	Load(ctx context.Context, uid string) ([]models.Provider, error)
	Save(ctx context.Context, uid string, list []models.Provider) error
}

type endpointTester interface {
	TestEndpoint(ctx context.Context, url string) ([]byte, error)
}

type providerService struct {
	store  providerStore
	tester endpointTester
}

func NewProviderService(store providerStore, tester endpointTester) *providerService {
	return &providerService{store: store, tester: tester}
}

// List returns the built-in providers overlaid with the user's saved ones.
func (s *providerService) List(ctx context.Context, uid string) ([]models.Provider, error) {
	saved, err := s.store.Load(ctx, uid)
	if err != nil {
		return nil, err
	}
	return providers.Merge(providers.Defaults(), saved), nil
}

// Save stores the full provider list and returns the merged view.
func (s *providerService) Save(ctx context.Context, uid string, list []models.Provider) ([]models.Provider, error) {
	seen := make(map[string]struct{}, len(list))
	for i, p := range list {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, errs.NewValidationError("provider id is required")
		}
		if _, dup := seen[p.ID]; dup {
			return nil, errs.NewValidationError("duplicate provider id: " + p.ID)
		}
		seen[p.ID] = struct{}{}
		if !providers.IsBuiltin(p.ID) && (p.Name == "" || p.BaseURL == "") {
			return nil, errs.NewValidationError("custom provider " + p.ID + " needs a name and base URL")
		}
		for _, e := range p.Endpoints {
			if e.Name == "" {
				return nil, errs.NewValidationError("endpoint name is required for provider " + p.ID)
			}
		}
		list[i] = p
	}

	if err := s.store.Save(ctx, uid, list); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("providers saved", "count", len(list))
	return providers.Merge(providers.Defaults(), list), nil
}

// TestEndpoint fetches url once and returns its flattened fields.
func (s *providerService) TestEndpoint(ctx context.Context, req dto.TestEndpointRequest) (dto.TestEndpointResponse, error) {
	raw, err := s.tester.TestEndpoint(ctx, strings.TrimSpace(req.URL))
	if err != nil {
		return dto.TestEndpointResponse{}, err
	}
	return dto.TestEndpointResponse{Fields: mapping.Flatten(raw)}, nil
}
