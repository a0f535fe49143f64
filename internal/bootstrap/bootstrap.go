package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	"firebase.google.com/go/v4/auth"

	vertexclient "github.com/GregMSThompson/findash-backend/internal/client/vertex"
	"github.com/GregMSThompson/findash-backend/internal/config"
	"github.com/GregMSThompson/findash-backend/internal/crypto"
	"github.com/GregMSThompson/findash-backend/internal/store"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

type Bootstrap struct {
	Log       *slog.Logger
	Backend   store.Backend
	Cipher    crypto.Cipher
	Firestore *firestore.Client
	Firebase  *auth.Client
	KMS       *gcpkms.KeyManagementClient
	Vertex    *vertexclient.Adapter

	closers []func() error
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)

	switch cfg.StoreBackend {
	case config.StoreFirestore:
		bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
		if err != nil {
			return bs, err
		}
		bs.closers = append(bs.closers, bs.Firestore.Close)
		bs.Backend = store.NewFirestoreBackend(bs.Firestore)
	default:
		db, err := store.OpenSQLite(applicationCtx, cfg.SQLitePath)
		if err != nil {
			return bs, err
		}
		bs.closers = append(bs.closers, db.Close)
		bs.Backend = db
	}

	if cfg.KMSKeyName != "" {
		bs.KMS, err = InitKMS(applicationCtx)
		if err != nil {
			return bs, err
		}
		bs.closers = append(bs.closers, bs.KMS.Close)
		bs.Cipher = crypto.NewKMS(bs.KMS, cfg.KMSKeyName)
	} else {
		bs.Log.Warn("KMSKEYNAME not set, api keys are stored unencrypted")
		bs.Cipher = crypto.NewPlain()
	}

	if cfg.ProjectID != "" && cfg.VertexModel != "" {
		bs.Vertex, err = vertexclient.NewAdapter(applicationCtx, bs.Log, cfg.ProjectID, cfg.Region, cfg.VertexModel)
		if err != nil {
			return bs, err
		}
		bs.closers = append(bs.closers, bs.Vertex.Close)
	}

	if cfg.AuthMode == config.AuthFirebase {
		bs.Firebase, err = InitFirebase(applicationCtx)
		if err != nil {
			return bs, err
		}
	}

	bs.Log.Info("bootstrap complete",
		"store", cfg.StoreBackend,
		"auth", cfg.AuthMode,
		"vertex", bs.Vertex != nil,
	)
	return bs, nil
}

// Close releases clients in reverse order of creation.
func (bs *Bootstrap) Close() error {
	var errList []error
	for i := len(bs.closers) - 1; i >= 0; i-- {
		if err := bs.closers[i](); err != nil {
			errList = append(errList, err)
		}
	}
	bs.closers = nil
	return errors.Join(errList...)
}
