package media

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// RoutePrefix 是聊天消息里唯一放行的媒体 URL 前缀。
// 客户端帧里的 image/video 地址必须以它开头，保证回看走本服务的鉴权。
const RoutePrefix = "/media/"

// ErrNotFound 对象不存在。
var ErrNotFound = errors.New("media: object not found")

// Object 是一次读取到的对象内容和元信息。
type Object struct {
	Body        io.ReadCloser
	ContentType string
}

// Store 是对象存储的窄契约：写入带内容类型和上传者，按键读回。
type Store interface {
	Put(key, contentType string, uploadedBy uint, r io.Reader) error
	Get(key string) (*Object, error)
}

// ValidKey 拒绝空键、绝对路径、目录穿越以及 .meta 结尾的键——
// 元数据旁车文件不是对象，不能被当作键读到或写掉。
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.HasSuffix(key, ".meta") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}

// DiskStore 把对象落在本地磁盘上，内容类型和上传者写进同名 .meta 文件。
// 部署换成真正的对象存储时只需要替换这个实现。
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *DiskStore) Put(key, contentType string, uploadedBy uint, r io.Reader) error {
	if !ValidKey(key) {
		return errors.New("media: bad key")
	}
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	meta := contentType + "\nuploaded-by: " + strconv.FormatUint(uint64(uploadedBy), 10) + "\n"
	return os.WriteFile(p+".meta", []byte(meta), 0o644)
}

func (s *DiskStore) Get(key string) (*Object, error) {
	if !ValidKey(key) {
		return nil, ErrNotFound
	}
	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	contentType := "application/octet-stream"
	if meta, err := os.ReadFile(s.path(key) + ".meta"); err == nil {
		line, _, _ := strings.Cut(string(meta), "\n")
		if ct := strings.TrimSpace(line); ct != "" {
			contentType = ct
		}
	}
	return &Object{Body: f, ContentType: contentType}, nil
}
