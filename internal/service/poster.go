package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"reelshelf/internal/config"
	"reelshelf/internal/model"
)

// MirrorResult is the location of a mirrored poster.
type MirrorResult struct {
	URL string
	Key string
}

// PosterService copies third-party poster images into Cloudflare R2.
// OMDb poster URLs are not under our control and rot over time; the
// worker mirrors each one once, normalized to a bounded JPEG.
type PosterService struct {
	s3Client  *s3.Client
	http      *http.Client
	bucket    string
	publicURL string
}

// NewPosterService constructs an S3-compatible client for Cloudflare R2.
func NewPosterService(ctx context.Context, cfg *config.Config) (*PosterService, error) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" || cfg.R2PublicURL == "" {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &PosterService{
		s3Client: s3Client,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		bucket:    cfg.R2BucketName,
		publicURL: strings.TrimSuffix(cfg.R2PublicURL, "/"),
	}, nil
}

// MirrorPoster downloads the source image, shrinks it to at most
// PosterMaxWidth wide, and uploads the JPEG to R2.
func (s *PosterService) MirrorPoster(ctx context.Context, sourceURL string) (*MirrorResult, error) {
	data, err := s.fetchPoster(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := shrinkToJPEG(data, model.PosterMaxWidth, 85)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", model.PosterFolder, uuid.NewString(), model.PosterExt)

	if err := s.putObject(ctx, key, jpegBytes, model.ContentTypeJPEG, model.PosterCacheControl); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", s.publicURL, key)
	return &MirrorResult{URL: url, Key: key}, nil
}

// fetchPoster downloads the source image with size and type checks.
func (s *PosterService) fetchPoster(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPosterFetchFailed, err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPosterFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", model.ErrPosterFetchFailed, resp.StatusCode)
	}
	if resp.ContentLength > model.MaxPosterSizeBytes {
		return nil, model.ErrPosterTooLarge
	}

	limitedReader := io.LimitReader(resp.Body, model.MaxPosterSizeBytes+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read poster body: %w", err)
	}
	if int64(len(data)) > model.MaxPosterSizeBytes {
		return nil, model.ErrPosterTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if !model.IsAllowedImageType(contentType) {
		return nil, model.ErrInvalidPosterType
	}

	return data, nil
}

// shrinkToJPEG downscales to maxWidth when wider and encodes as JPEG.
// Narrower images are kept at their original size.
func shrinkToJPEG(data []byte, maxWidth, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

// putObject uploads bytes to R2 with metadata.
func (s *PosterService) putObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to r2: %w", err)
	}
	return nil
}

// DeleteObject removes a mirrored poster by key. A blank key is a no-op.
func (s *PosterService) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from r2: %w", err)
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
