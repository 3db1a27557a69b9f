package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ai-appbuilder-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// GenerationRepository keeps generation history in process when no database
// is configured. Records expire after a day.
type GenerationRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
	now   func() time.Time
}

func NewGenerationRepository() *GenerationRepository {
	return &GenerationRepository{
		cache: cache.New(24*time.Hour, 30*time.Minute),
		now:   time.Now,
	}
}

func clone(r *entity.GenerationRecord) *entity.GenerationRecord {
	c := *r
	c.Attachments = append([]entity.GenerationAttachment(nil), r.Attachments...)
	return &c
}

func (r *GenerationRepository) Create(ctx context.Context, record *entity.GenerationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now()
	}
	r.cache.Set(record.Id.String(), clone(record), cache.DefaultExpiration)
	return nil
}

func (r *GenerationRepository) Update(ctx context.Context, record *entity.GenerationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	record.UpdatedAt = &now
	r.cache.Set(record.Id.String(), clone(record), cache.DefaultExpiration)
	return nil
}

func (r *GenerationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.GenerationRecord, error) {
	if x, found := r.cache.Get(id.String()); found {
		return clone(x.(*entity.GenerationRecord)), nil
	}
	return nil, nil
}

func (r *GenerationRepository) FindAllByIdentity(ctx context.Context, identity string, limit, offset int) ([]*entity.GenerationRecord, error) {
	matches := r.filter(func(g *entity.GenerationRecord) bool { return g.Identity == identity })
	if offset >= len(matches) {
		return []*entity.GenerationRecord{}, nil
	}
	matches = matches[offset:]
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *GenerationRepository) UpdateStatusByChatID(ctx context.Context, chatID, status, demoURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for key, item := range r.cache.Items() {
		g := item.Object.(*entity.GenerationRecord)
		if g.ChatId != chatID {
			continue
		}
		updated := clone(g)
		updated.LatestStatus = status
		if demoURL != "" {
			updated.DemoUrl = demoURL
		}
		updated.UpdatedAt = &now
		r.cache.Set(key, updated, cache.DefaultExpiration)
	}
	return nil
}

// filter returns matching records newest first.
func (r *GenerationRepository) filter(match func(*entity.GenerationRecord) bool) []*entity.GenerationRecord {
	var out []*entity.GenerationRecord
	for _, item := range r.cache.Items() {
		g := item.Object.(*entity.GenerationRecord)
		if match(g) {
			out = append(out, clone(g))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
