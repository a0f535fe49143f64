package store

import (
	"context"

	"github.com/GregMSThompson/findash-backend/internal/crypto"
	"github.com/GregMSThompson/findash-backend/internal/models"
)

type settingsStore struct {
	backend Backend
	cipher  crypto.Cipher
}

func NewSettingsStore(b Backend, c crypto.Cipher) *settingsStore {
	return &settingsStore{backend: b, cipher: c}
}

// Load returns the AI settings. found is false when none were saved.
func (s *settingsStore) Load(ctx context.Context, uid string) (models.AISettings, bool, error) {
	var settings models.AISettings
	found, err := loadJSON(ctx, s.backend, uid, keyAISettings, &settings)
	if err != nil || !found {
		return models.AISettings{}, false, err
	}
	for platform, enc := range settings.APIKeys {
		key, err := s.cipher.Decrypt(ctx, enc)
		if err != nil {
			return models.AISettings{}, false, err
		}
		settings.APIKeys[platform] = key
	}
	return settings, true, nil
}

func (s *settingsStore) Save(ctx context.Context, uid string, settings models.AISettings) error {
	out := models.AISettings{Platform: settings.Platform, APIKeys: make(map[string]string, len(settings.APIKeys))}
	for platform, key := range settings.APIKeys {
		enc, err := s.cipher.Encrypt(ctx, key)
		if err != nil {
			return err
		}
		out.APIKeys[platform] = enc
	}
	return saveJSON(ctx, s.backend, uid, keyAISettings, out)
}
