package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadStore 上传文件存储：身份证照片、合同PDF等二进制附件
type UploadStore struct {
	dir     string
	urlPath string
}

// NewUploadStore 创建上传存储，目录不存在时自动创建
func NewUploadStore(dir, urlPath string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %v", err)
	}
	return &UploadStore{
		dir:     dir,
		urlPath: strings.TrimSuffix(urlPath, "/"),
	}, nil
}

// Save 保存上传文件，返回对外访问的URL路径
func (s *UploadStore) Save(c *gin.Context, file *multipart.FileHeader) (string, error) {
	// 使用UUID文件名，避免用户文件名冲突和路径注入
	name := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	dst := filepath.Join(s.dir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("保存文件失败: %v", err)
	}
	return path.Join(s.urlPath, name), nil
}

// Dir 存储目录（用于静态文件路由）
func (s *UploadStore) Dir() string {
	return s.dir
}

// URLPath 对外访问路径前缀
func (s *UploadStore) URLPath() string {
	return s.urlPath
}
