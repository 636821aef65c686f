package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StorageService keeps uploaded CVs in a scratch directory just long enough
// for the PDF parser to read them from disk. Files are request-scoped; the
// handler removes them once the analysis finishes.
type StorageService interface {
	EnsureUploadDir() error
	SaveUpload(file *multipart.FileHeader) (string, error)
	Remove(filePath string) error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// SaveUpload writes the uploaded file under a fresh name and returns its path.
func (s *storageService) SaveUpload(file *multipart.FileHeader) (string, error) {
	name := fmt.Sprintf("cv_%s.pdf", uuid.New().String())
	path := filepath.Join(s.uploadPath, name)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write scratch file: %w", err)
	}

	return path, nil
}

func (s *storageService) Remove(filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove scratch file: %w", err)
	}
	return nil
}
