package models

import "time"

// User 由注册创建，口令以独立的盐和 PBKDF2 哈希两列存储，不保存明文。
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:32;not null"`
	PasswordSalt []byte `gorm:"not null"`
	PasswordHash []byte `gorm:"not null"`
	CreatedAt    time.Time
}

// Message 是某个房间内一条已落库的消息。房间用字符串名字标识，
// 用户名冗余一份，历史查询不需要再 join users 表。
// Seq 是库级自增序号，插入即定序；同一房间由唯一实例串行写入，
// 历史按 Seq 排序得到的就是落库顺序，时间戳撞微秒也不会乱。
type Message struct {
	ID        string `gorm:"primaryKey;size:36"`
	Seq       int64  `gorm:"autoIncrement;uniqueIndex:idx_msg_seq"`
	Room      string `gorm:"index:idx_msg_room;size:64;not null"`
	UserID    uint   `gorm:"not null"`
	Username  string `gorm:"size:32;not null"`
	Type      string `gorm:"size:8;not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// 消息类型枚举，落库与广播共用。
const (
	MsgTypeText  = "text"
	MsgTypeImage = "image"
	MsgTypeVideo = "video"
)
