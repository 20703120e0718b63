package cloudinary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// Upload kinds accepted by UploadFile. Each kind lands in its own subfolder.
const (
	KindAudio    = "audio"
	KindImage    = "image"
	KindMetadata = "metadata"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service uploads local files to Cloudinary and hands back durable URLs.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: cfg.Folder,
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// UploadFile uploads the file at localPath under the given kind's subfolder
// and returns its secure URL. The caller owns cleanup of localPath.
func (s *Service) UploadFile(ctx context.Context, localPath, kind string) (string, error) {
	switch kind {
	case KindAudio, KindImage, KindMetadata:
	default:
		return "", fmt.Errorf("unsupported upload kind %q", kind)
	}

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open upload file: %w", err)
	}
	defer file.Close()

	if kind == KindAudio {
		detected, err := mimetype.DetectFile(localPath)
		if err != nil {
			return "", fmt.Errorf("failed to inspect upload file: %w", err)
		}
		if !strings.HasPrefix(detected.String(), "audio/") && !strings.HasPrefix(detected.String(), "video/") {
			return "", fmt.Errorf("file %q is not an audio recording (%s)", filepath.Base(localPath), detected.String())
		}
	}

	folder := strings.Trim(s.folder, "/")
	if folder != "" {
		folder = folder + "/" + kind
	} else {
		folder = kind
	}

	params := uploader.UploadParams{
		Folder:       folder,
		PublicID:     buildPublicID(filepath.Base(localPath)),
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, file, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}

	s.logger.Info().
		Str("public_id", result.PublicID).
		Str("kind", kind).
		Msg("file uploaded to cloudinary")

	return result.SecureURL, nil
}

func buildPublicID(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}

	return fmt.Sprintf("%s-%d", base, time.Now().Unix())
}
