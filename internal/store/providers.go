package store

import (
	"context"

	"github.com/GregMSThompson/findash-backend/internal/crypto"
	"github.com/GregMSThompson/findash-backend/internal/models"
)

// providerStore keeps the user's saved provider list with API keys
// encrypted.
type providerStore struct {
	backend Backend
	cipher  crypto.Cipher
}

func NewProviderStore(b Backend, c crypto.Cipher) *providerStore {
	return &providerStore{backend: b, cipher: c}
}

// Load returns the saved providers with decrypted keys; nil when none were
// saved.
func (s *providerStore) Load(ctx context.Context, uid string) ([]models.Provider, error) {
	var saved []models.Provider
	if _, err := loadJSON(ctx, s.backend, uid, keyProviders, &saved); err != nil {
		return nil, err
	}
	for i := range saved {
		key, err := s.cipher.Decrypt(ctx, saved[i].APIKey)
		if err != nil {
			return nil, err
		}
		saved[i].APIKey = key
	}
	return saved, nil
}

func (s *providerStore) Save(ctx context.Context, uid string, providers []models.Provider) error {
	out := make([]models.Provider, len(providers))
	for i, p := range providers {
		enc, err := s.cipher.Encrypt(ctx, p.APIKey)
		if err != nil {
			return err
		}
		p.APIKey = enc
		out[i] = p
	}
	return saveJSON(ctx, s.backend, uid, keyProviders, out)
}
