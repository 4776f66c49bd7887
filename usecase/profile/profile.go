package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/dsp-console/domain"
)

// IdentitySource fetches the identity of the current session.
type IdentitySource interface {
	Me(ctx context.Context) (*domain.Identity, error)
}

// IdentitySink stores a refreshed identity.
type IdentitySink interface {
	SetIdentity(ctx context.Context, identity domain.Identity) error
}

type UseCase struct {
	source IdentitySource
	sink   IdentitySink
	logger *zap.Logger
}

func New(source IdentitySource, sink IdentitySink, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		source: source,
		sink:   sink,
		logger: logger,
	}
}

// Refresh re-reads the identity from the backend and replaces the stored
// record. The credential is left alone.
func (uc *UseCase) Refresh(ctx context.Context) (*domain.Identity, error) {
	identity, err := uc.source.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := uc.sink.SetIdentity(ctx, *identity); err != nil {
		uc.logger.Warn("failed to store refreshed identity", zap.Error(err))
		return nil, err
	}
	return identity, nil
}
