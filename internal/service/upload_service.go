package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/logger"

	"github.com/google/uuid"
)

const (
	defaultUploadDir      = "uploads"
	defaultUploadMaxFiles = 5
	defaultUploadMaxSize  = 10 << 20
)

// StoredFile 已落盘的上传文件
type StoredFile struct {
	Name     string // 原始文件名
	Path     string // 对外相对路径
	DiskPath string
	Size     int64
	MimeType string
}

// UploadService 设计稿上传服务
type UploadService struct {
	cfg config.UploadConfig
}

// NewUploadService 创建上传服务
func NewUploadService(cfg config.UploadConfig) *UploadService {
	return &UploadService{cfg: cfg}
}

// MaxFiles 单次请求允许的文件数
func (s *UploadService) MaxFiles() int {
	if s.cfg.MaxFiles > 0 {
		return s.cfg.MaxFiles
	}
	return defaultUploadMaxFiles
}

func (s *UploadService) maxSize() int64 {
	if s.cfg.MaxSize > 0 {
		return s.cfg.MaxSize
	}
	return defaultUploadMaxSize
}

func (s *UploadService) rootDir() string {
	if dir := strings.TrimSpace(s.cfg.Dir); dir != "" {
		return dir
	}
	return defaultUploadDir
}

// Validate 校验文件大小、扩展名与类型，不落盘
func (s *UploadService) Validate(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", ErrUploadInvalid
	}
	if file.Size > s.maxSize() {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrUploadInvalid, file.Filename, s.maxSize())
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.AllowedExtensions) > 0 {
		if ext == "" || !isAllowedExtension(ext, s.cfg.AllowedExtensions) {
			return "", fmt.Errorf("%w: extension %q not allowed", ErrUploadInvalid, ext)
		}
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadInvalid, err)
	}
	defer src.Close()
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("%w: %v", ErrUploadInvalid, err)
	}
	contentType := http.DetectContentType(buffer[:n])
	if len(s.cfg.AllowedTypes) > 0 && !isAllowedContentType(contentType, s.cfg.AllowedTypes) {
		return "", fmt.Errorf("%w: content type %s not allowed", ErrUploadInvalid, contentType)
	}
	return contentType, nil
}

// SaveFile 保存上传文件
func (s *UploadService) SaveFile(file *multipart.FileHeader, scene string) (*StoredFile, error) {
	contentType, err := s.Validate(file)
	if err != nil {
		return nil, err
	}
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadSaveFailed, err)
	}
	defer src.Close()

	if strings.TrimSpace(scene) == "" {
		scene = constants.UploadSceneOrderDesign
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	now := time.Now()
	year := now.Format("2006")
	month := now.Format("01")
	diskPath := filepath.Join(s.rootDir(), scene, year, month, filename)

	if err := os.MkdirAll(filepath.Dir(diskPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadSaveFailed, err)
	}
	dst, err := os.Create(diskPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadSaveFailed, err)
	}
	written, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(diskPath)
		if copyErr == nil {
			copyErr = closeErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUploadSaveFailed, copyErr)
	}

	return &StoredFile{
		Name:     filepath.Base(file.Filename),
		Path:     fmt.Sprintf("/uploads/%s/%s/%s/%s", scene, year, month, filename),
		DiskPath: diskPath,
		Size:     written,
		MimeType: contentType,
	}, nil
}

// DeleteFile 删除已保存文件，文件不存在视为成功
func (s *UploadService) DeleteFile(file *StoredFile) error {
	if file == nil || file.DiskPath == "" {
		return nil
	}
	if err := os.Remove(file.DiskPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if strings.EqualFold(ext, normalized) {
			return true
		}
	}
	return false
}

func isAllowedContentType(contentType string, allowed []string) bool {
	base := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	for _, t := range allowed {
		if strings.EqualFold(base, strings.TrimSpace(t)) {
			return true
		}
	}
	return false
}

// UploadScope 一次创建流程中接收的文件集合
// Commit 之前的任何退出路径都应调用 Release 删除已落盘文件
type UploadScope struct {
	svc       *UploadService
	scene     string
	files     []*StoredFile
	committed bool
}

// NewScope 创建上传作用域
func (s *UploadService) NewScope(scene string) *UploadScope {
	return &UploadScope{svc: s, scene: scene}
}

// Accept 校验并保存全部文件，任一失败时已保存的文件立即删除
func (u *UploadScope) Accept(files []*multipart.FileHeader) error {
	if len(files) == 0 {
		return nil
	}
	if len(u.files)+len(files) > u.svc.MaxFiles() {
		return fmt.Errorf("%w: max %d", ErrUploadTooMany, u.svc.MaxFiles())
	}
	for _, file := range files {
		if _, err := u.svc.Validate(file); err != nil {
			return err
		}
	}
	for _, file := range files {
		stored, err := u.svc.SaveFile(file, u.scene)
		if err != nil {
			u.Release()
			return err
		}
		u.files = append(u.files, stored)
	}
	return nil
}

// Files 已接收文件
func (u *UploadScope) Files() []*StoredFile {
	return u.files
}

// Commit 文件所有权已移交给持久化的订单图片记录
func (u *UploadScope) Commit() {
	u.committed = true
}

// Release 删除未移交的文件，可重复调用
func (u *UploadScope) Release() {
	if u == nil || u.committed {
		return
	}
	for _, file := range u.files {
		if err := u.svc.DeleteFile(file); err != nil {
			logger.Errorw("upload_cleanup_failed", "path", file.DiskPath, "error", err)
			continue
		}
		logger.Debugw("upload_cleanup_deleted", "path", file.DiskPath)
	}
	u.files = nil
}
