package shifts

import (
	"context"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/checkpoints"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/properties"
)

// PropertyRepoLocator adapts the properties repository to PropertyLocator.
type PropertyRepoLocator struct {
	Repo *properties.Repository
}

func (l PropertyRepoLocator) Location(ctx context.Context, propertyID int64) (float64, float64, int64, error) {
	p, err := l.Repo.Get(ctx, propertyID)
	if err != nil {
		return 0, 0, 0, err
	}
	return p.Lat, p.Lng, p.CompanyID, nil
}

// CheckpointRepoResolver adapts the checkpoints repository to CheckpointResolver.
type CheckpointRepoResolver struct {
	Repo *checkpoints.Repository
}

func (r CheckpointRepoResolver) Resolve(ctx context.Context, propertyID int64, code string) (int64, error) {
	c, err := r.Repo.FindByCode(ctx, propertyID, code)
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}
