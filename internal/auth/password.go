package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"
)

// 口令派生参数。盐每用户独立随机生成，迭代次数刻意偏高以拖慢暴力破解。
const (
	saltLen     = 16
	pbkdf2Iters = 120_000
	keyLen      = 32
)

// HashPassword 生成随机盐并用 PBKDF2-HMAC-SHA256 派生口令哈希。
func HashPassword(password string) (salt, hash []byte, err error) {
	salt = make([]byte, saltLen)
	if _, err = rand.Read(salt); err != nil {
		return nil, nil, err
	}
	hash = pbkdf2.Key([]byte(password), salt, pbkdf2Iters, keyLen, sha256.New)
	return salt, hash, nil
}

// VerifyPassword 用存储的盐重算哈希并做常数时间比较。
func VerifyPassword(password string, salt, hash []byte) bool {
	computed := pbkdf2.Key([]byte(password), salt, pbkdf2Iters, keyLen, sha256.New)
	return subtle.ConstantTimeCompare(computed, hash) == 1
}
