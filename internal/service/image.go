package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"github.com/pageza/pantrychef/backend/internal/detector"
	"github.com/pageza/pantrychef/backend/internal/metrics"
)

// ImageUpload is a photo received from a client
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageArchive stores uploaded photos. config.S3Config satisfies it.
type ImageArchive interface {
	PutObject(ctx context.Context, key, contentType string, data []byte) error
}

// ImageService sends uploaded photos to the ingredient detector
type ImageService struct {
	detector detector.Detector
	archive  ImageArchive
	logger   *zap.Logger
}

// NewImageService creates an ImageService. archive may be nil.
func NewImageService(d detector.Detector, archive ImageArchive, logger *zap.Logger) *ImageService {
	return &ImageService{
		detector: d,
		archive:  archive,
		logger:   logger,
	}
}

// ProcessImage validates the upload, archives it when an archive is
// configured and returns the detected ingredients.
func (s *ImageService) ProcessImage(ctx context.Context, userID uuid.UUID, upload ImageUpload) ([]detector.Detection, error) {
	if len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(upload.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	s.archiveUpload(ctx, userID, format, upload)

	detections, err := s.detector.Detect(ctx, upload.Data, upload.Filename)
	if err != nil {
		if errors.Is(err, detector.ErrImageRejected) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("ingredient detection failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return nil, err
	}

	metrics.DetectedIngredients.Observe(float64(len(detections)))
	if len(detections) == 0 {
		return nil, ErrNoIngredientsDetected
	}
	return detections, nil
}

// archiveUpload is best effort; a failed upload never fails the request.
func (s *ImageService) archiveUpload(ctx context.Context, userID uuid.UUID, format string, upload ImageUpload) {
	if s.archive == nil {
		return
	}
	contentType := upload.ContentType
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = "image/" + format
	}
	key := path.Join(userID.String(), time.Now().UTC().Format("2006/01/02"), uuid.NewString()+"."+format)
	if err := s.archive.PutObject(ctx, key, contentType, upload.Data); err != nil {
		s.logger.Warn("failed to archive upload", zap.String("key", key), zap.Error(err))
	}
}
