package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/akocak/fotogram/pkg"
)

// UploadService, görsel yükleme iş mantığı interface'i.
//
// Yükleme iki adımlı akışın ilk adımıdır: client önce görseli yükler,
// dönen URL ile gönderi oluşturur (veya avatarını günceller).
type UploadService interface {
	UploadImage(file multipart.File, header *multipart.FileHeader) (fileURL string, err error)
}

type uploadService struct {
	uploadDir string
	maxSize   int64
}

// NewUploadService, constructor.
func NewUploadService(uploadDir string, maxSize int64) UploadService {
	return &uploadService{
		uploadDir: uploadDir,
		maxSize:   maxSize,
	}
}

// allowedImageTypes, yüklemeye izin verilen görsel türleri.
// Fotoğraf paylaşım uygulaması — sadece görseller kabul edilir.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadImage, görseli doğrular, diske kaydeder ve erişim URL'ini döner.
func (s *uploadService) UploadImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	// Boyut kontrolü
	if header.Size > s.maxSize {
		return "", fmt.Errorf("%w: file too large (max %dMB)", pkg.ErrBadRequest, s.maxSize/(1024*1024))
	}

	// MIME type kontrolü — sadece base type (charset vb. parametre olabilir)
	contentType := header.Header.Get("Content-Type")
	mimeBase := strings.TrimSpace(strings.Split(contentType, ";")[0])
	if !allowedImageTypes[mimeBase] {
		return "", fmt.Errorf("%w: only jpeg, png, gif, and webp images are allowed", pkg.ErrBadRequest)
	}

	// Unique dosya adı: {uuid}_{original_filename} — çakışma ve güvenlik için
	safeFilename := sanitizeFilename(header.Filename)
	diskFilename := uuid.NewString() + "_" + safeFilename

	destPath := filepath.Join(s.uploadDir, diskFilename)
	destFile, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, file); err != nil {
		// Hata durumunda yarım dosyayı temizle
		os.Remove(destPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return "/api/uploads/" + diskFilename, nil
}

// sanitizeFilename, dosya adını güvenli hale getirir.
// Path traversal saldırılarını önler (../../etc/passwd gibi).
func sanitizeFilename(name string) string {
	name = filepath.Base(name)

	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '\x00' {
			return -1
		}
		return r
	}, name)

	if name == "" || name == "." || name == ".." {
		name = "unnamed"
	}

	return name
}
