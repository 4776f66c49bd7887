package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/dsp-console/domain"
)

// Source is the slice of the backend API the dashboard reads.
type Source interface {
	ListLocations(ctx context.Context) ([]domain.Location, error)
	ListCameras(ctx context.Context, locationID int64) ([]domain.Camera, error)
	ListEmployees(ctx context.Context, locationID int64) ([]domain.Employee, error)
}

type UseCase struct {
	source Source
	logger *zap.Logger
	now    func() time.Time
}

func New(source Source, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{source: source, logger: logger, now: time.Now}
}

// Summary counts locations, cameras and employees. The three reads are
// sequential and the first failure aborts the summary.
func (uc *UseCase) Summary(ctx context.Context) (*domain.Dashboard, error) {
	locations, err := uc.source.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	cameras, err := uc.source.ListCameras(ctx, 0)
	if err != nil {
		return nil, err
	}
	employees, err := uc.source.ListEmployees(ctx, 0)
	if err != nil {
		return nil, err
	}

	out := &domain.Dashboard{
		Locations:   len(locations),
		Cameras:     len(cameras),
		Employees:   len(employees),
		RefreshedAt: domain.Timestamp{Time: uc.now().UTC()},
	}
	for _, l := range locations {
		if l.IsActive {
			out.ActiveLocations++
		}
	}
	for _, c := range cameras {
		if c.IsActive {
			out.ActiveCameras++
		}
	}
	for _, e := range employees {
		if !e.IsRegistered {
			out.Unregistered++
		}
	}

	uc.logger.Debug("dashboard refreshed",
		zap.Int("locations", out.Locations),
		zap.Int("cameras", out.Cameras),
		zap.Int("employees", out.Employees))
	return out, nil
}
