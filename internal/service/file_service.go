package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"gasdoc/internal/config"
	"gasdoc/internal/domain"
	"gasdoc/internal/port"
)

// FileInput is the DTO for one incoming document file.
type FileInput struct {
	Name string
	Size int64 // -1 when unknown
	Body io.Reader
}

// FileService turns uploads, local directories and S3 prefixes into validated documents,
// and publishes export files back to object storage.
type FileService interface {
	Read(ctx context.Context, input FileInput) (*domain.Document, error)
	LoadDir(ctx context.Context, dir string) ([]domain.Document, error)
	LoadS3(ctx context.Context, bucket, prefix string) ([]domain.Document, error)
	UploadExport(ctx context.Context, bucket, key, contentType string, body []byte) (*port.UploadOutput, error)
}

type fileService struct {
	storage  port.ObjectStorage
	maxBytes int64
	logger   *zap.Logger
}

// NewFileService creates a new FileService implementation. storage may be nil when no
// S3 source or export target is configured.
func NewFileService(storage port.ObjectStorage, cfg *config.PipelineConfig, logger *zap.Logger) FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fileService{
		storage:  storage,
		maxBytes: cfg.MaxFileSizeMB * 1024 * 1024,
		logger:   logger,
	}
}

func (s *fileService) Read(ctx context.Context, input FileInput) (*domain.Document, error) {
	// Validate file extension
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Name), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	// Validate file size
	if input.Size > s.maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	content, err := io.ReadAll(io.LimitReader(input.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", input.Name, err)
	}
	if int64(len(content)) > s.maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	// Magic-byte content type detection must agree with the extension
	detected, _, err := mime.ParseMediaType(http.DetectContentType(content))
	if err != nil {
		return nil, domain.ErrUnsupportedFileType
	}
	if detectedType, ok := domain.AllowedContentTypes[detected]; !ok || detectedType != fileType {
		return nil, domain.ErrUnsupportedFileType
	}

	doc := &domain.Document{
		Name:        input.Name,
		Content:     content,
		ContentType: domain.AllowedFileTypes[fileType],
	}
	if fileType == domain.FileTypePDF {
		pages, err := pageCount(content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPDF, err)
		}
		doc.Pages = pages
	}

	s.logger.Debug("document read",
		zap.String("name", doc.Name),
		zap.String("content_type", doc.ContentType),
		zap.Int("bytes", len(content)),
		zap.Int("pages", doc.Pages))
	return doc, ctx.Err()
}

func pageCount(content []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(content), conf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("no pages")
	}
	return n, nil
}

// LoadDir reads every supported file directly under dir, sorted by name. Unsupported
// extensions are skipped; any other failure aborts the load.
func (s *fileService) LoadDir(ctx context.Context, dir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var docs []domain.Document
	for _, e := range entries {
		if e.IsDir() || !supported(e.Name()) {
			continue
		}
		doc, err := s.readFile(ctx, filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

func (s *fileService) readFile(ctx context.Context, p string) (*domain.Document, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", p, err)
	}
	defer func() { _ = f.Close() }()

	size := int64(-1)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	doc, err := s.Read(ctx, FileInput{Name: filepath.Base(p), Size: size, Body: f})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return doc, nil
}

// LoadS3 downloads every supported object under bucket/prefix, in key order.
func (s *fileService) LoadS3(ctx context.Context, bucket, prefix string) ([]domain.Document, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}
	objects, err := s.storage.List(ctx, bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing s3://%s/%s: %w", bucket, prefix, err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	var docs []domain.Document
	for _, obj := range objects {
		if !supported(obj.Key) {
			continue
		}
		if obj.Size > s.maxBytes {
			s.logger.Warn("skipping oversized object", zap.String("key", obj.Key), zap.Int64("size", obj.Size))
			continue
		}
		data, err := s.storage.Download(ctx, bucket, obj.Key)
		if err != nil {
			return nil, fmt.Errorf("downloading s3://%s/%s: %w", bucket, obj.Key, err)
		}
		doc, err := s.Read(ctx, FileInput{Name: path.Base(obj.Key), Size: int64(len(data)), Body: bytes.NewReader(data)})
		if err != nil {
			return nil, fmt.Errorf("s3://%s/%s: %w", bucket, obj.Key, err)
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (s *fileService) UploadExport(ctx context.Context, bucket, key, contentType string, body []byte) (*port.UploadOutput, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}
	out, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      bucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: contentType,
		Size:        int64(len(body)),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading export to s3://%s/%s: %w", bucket, key, err)
	}
	s.logger.Info("export uploaded", zap.String("bucket", bucket), zap.String("key", key), zap.Int("bytes", len(body)))
	return out, nil
}

func supported(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	_, ok := domain.AllowedExtensions[ext]
	return ok
}
