package specification

import "gorm.io/gorm"

type ByIdentity struct {
	Identity string
}

func (s ByIdentity) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("identity = ?", s.Identity)
}

type ByChatID struct {
	ChatID string
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

// NewestFirst orders by creation time, most recent first.
type NewestFirst struct{}

func (s NewestFirst) Apply(db *gorm.DB) *gorm.DB {
	return OrderBy{Field: "created_at", Desc: true}.Apply(db)
}
