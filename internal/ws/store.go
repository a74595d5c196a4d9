package ws

import (
	"github.com/Inmylir/realtime-chat/internal/models"

	"gorm.io/gorm"
)

// MessageStore 是房间落库消息用的窄接口，测试里用内存实现替换。
type MessageStore interface {
	Save(msg *models.Message) error
}

// GormMessageStore 把消息写进关系库。不同房间的写入互不依赖，
// 各房间 goroutine 并发插入无需协调。
type GormMessageStore struct {
	db *gorm.DB
}

func NewGormMessageStore(db *gorm.DB) *GormMessageStore {
	return &GormMessageStore{db: db}
}

func (s *GormMessageStore) Save(msg *models.Message) error {
	return s.db.Create(msg).Error
}
