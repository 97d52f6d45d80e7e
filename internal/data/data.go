package data

import (
	"context"
	"net/url"
	"time"

	"github.com/Zerg00s/extract-site-collection-url/internal/biz"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/net/publicsuffix"
	"gorm.io/gorm"
)

type RunPO struct {
	ID               string `gorm:"primaryKey"`
	CreatedAt        time.Time
	TotalLines       int
	ValidLines       int
	UniqueInputCount int
}

type SiteCollectionPO struct {
	ID             string `gorm:"primaryKey"`
	RunID          string `gorm:"index"`
	CreatedAt      time.Time
	SiteCollection string `gorm:"index"`
	Tenant         string `gorm:"index"`
	Count          int
}

type sqlRepo struct {
	db *gorm.DB
}

func fromBiz(do *biz.SiteCollectionRecord) *SiteCollectionPO {
	return &SiteCollectionPO{
		ID:             do.ID,
		RunID:          do.RunID,
		CreatedAt:      do.CreatedAt,
		SiteCollection: do.SiteCollection,
		Tenant:         do.Tenant,
		Count:          do.Count,
	}
}

func (po *SiteCollectionPO) toBiz() *biz.SiteCollectionRecord {
	return &biz.SiteCollectionRecord{
		ID:             po.ID,
		RunID:          po.RunID,
		CreatedAt:      po.CreatedAt,
		SiteCollection: po.SiteCollection,
		Tenant:         po.Tenant,
		Count:          po.Count,
	}
}

func NewSQLRepo(db *gorm.DB) biz.CollectionRepo {
	db.AutoMigrate(&RunPO{}, &SiteCollectionPO{})
	return &sqlRepo{db: db}
}

func (repo *sqlRepo) CreateRun(ctx context.Context, run *biz.ExtractionRun, records []*biz.SiteCollectionRecord) error {
	pos := make([]*SiteCollectionPO, 0, len(records))
	for _, rec := range records {
		if rec.Tenant == "" {
			rec.Tenant = tenantOf(rec.SiteCollection)
		}
		pos = append(pos, fromBiz(rec))
	}
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&RunPO{
			ID:               run.ID,
			CreatedAt:        run.CreatedAt,
			TotalLines:       run.TotalLines,
			ValidLines:       run.ValidLines,
			UniqueInputCount: run.UniqueInputCount,
		}).Error; err != nil {
			return err
		}
		if len(pos) == 0 {
			return nil
		}
		return tx.CreateInBatches(pos, 200).Error
	})
	if err != nil {
		return biz.ErrInternalError.WithMessage(err.Error())
	}
	return nil
}

func (repo *sqlRepo) GetBySiteCollection(ctx context.Context, siteCollection string) ([]*biz.SiteCollectionRecord, error) {
	var pos []*SiteCollectionPO

	err := repo.db.WithContext(ctx).
		Where("site_collection = ?", siteCollection).
		Find(&pos).Error
	if err != nil {
		return nil, biz.ErrInternalError.WithMessage(err.Error())
	}
	return toBizSlice(pos), nil
}

func (repo *sqlRepo) GetByTimeRange(ctx context.Context, start time.Time, end time.Time, tenant string) ([]*biz.SiteCollectionRecord, error) {
	var pos []*SiteCollectionPO
	q := repo.db.WithContext(ctx).
		Where("created_at BETWEEN ? AND ?", start, end)
	if tenant != "" {
		q = q.Where("tenant = ?", tenant)
	}
	if err := q.Find(&pos).Error; err != nil {
		return nil, biz.ErrInternalError.WithMessage(err.Error())
	}
	return toBizSlice(pos), nil
}

func (repo *sqlRepo) GetAllGroupedByTenant(ctx context.Context) (map[string][]*biz.SiteCollectionRecord, error) {
	var pos []*SiteCollectionPO

	err := repo.db.WithContext(ctx).Order("tenant").Find(&pos).Error
	if err != nil {
		return nil, biz.ErrInternalError.WithMessage(err.Error())
	}
	resultMap := make(map[string][]*biz.SiteCollectionRecord)
	for _, po := range pos {
		do := po.toBiz()
		resultMap[do.Tenant] = append(resultMap[do.Tenant], do)
	}
	return resultMap, nil
}

func toBizSlice(pos []*SiteCollectionPO) []*biz.SiteCollectionRecord {
	results := make([]*biz.SiteCollectionRecord, 0, len(pos))
	for _, po := range pos {
		results = append(results, po.toBiz())
	}
	return results
}

// tenantOf derives the grouping key for a site collection URL: the
// registrable domain of its host. Hosts publicsuffix can't resolve
// (localhost, IPs) fall back to the raw host.
func tenantOf(siteCollection string) string {
	u, err := url.Parse(siteCollection)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host, err := publicsuffix.EffectiveTLDPlusOne(u.Hostname())
	if err != nil {
		return u.Hostname()
	}
	return host
}
