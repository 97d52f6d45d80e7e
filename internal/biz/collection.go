package biz

import (
	"context"
	"time"
)

// ExtractionRun is one persisted aggregation run.
type ExtractionRun struct {
	ID               string
	CreatedAt        time.Time
	TotalLines       int
	ValidLines       int
	UniqueInputCount int
}

// SiteCollectionRecord is one unique site collection observed in a run.
// Tenant is the registrable domain of the site collection's host, used as
// the grouping dimension for history queries.
type SiteCollectionRecord struct {
	ID             string
	RunID          string
	CreatedAt      time.Time
	SiteCollection string
	Tenant         string
	Count          int
}

type CollectionRepo interface {
	CreateRun(ctx context.Context, run *ExtractionRun, records []*SiteCollectionRecord) error
	GetBySiteCollection(ctx context.Context, siteCollection string) ([]*SiteCollectionRecord, error)
	GetByTimeRange(ctx context.Context, start time.Time, end time.Time, tenant string) ([]*SiteCollectionRecord, error)
	GetAllGroupedByTenant(context.Context) (map[string][]*SiteCollectionRecord, error)
}
