package copilot

import (
	"context"
	"encoding/base64"
	"strings"

	"claridx/internal/common"
	"claridx/internal/config"

	"go.uber.org/zap"
)

// Summarizer is the model call; *Client implements it.
type Summarizer interface {
	GenerateSummary(ctx context.Context, imageBase64, notes, labs string, imagingType ImagingType, language string) (string, error)
}

type SummaryRequest struct {
	Image         []byte
	ImageBase64   string
	ClinicalNotes string
	LabValues     string
	ImagingType   ImagingType
	Language      string
}

type Service struct {
	model  Summarizer
	maxDim int
	log    *zap.Logger
}

func NewService(model Summarizer, cfg config.CopilotConfig, log *zap.Logger) *Service {
	return &Service{model: model, maxDim: cfg.MaxImageDimension, log: log.Named("copilot")}
}

func (s *Service) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	image := req.Image
	if len(image) == 0 && req.ImageBase64 != "" {
		decoded, err := decodeBase64Image(req.ImageBase64)
		if err != nil {
			return "", err
		}
		image = decoded
	}
	if len(image) == 0 {
		return "", common.NewInvalidInputError("an image is required")
	}
	if strings.TrimSpace(req.ClinicalNotes) == "" {
		return "", common.NewInvalidInputError("clinical notes are required")
	}
	if strings.TrimSpace(req.LabValues) == "" {
		return "", common.NewInvalidInputError("lab values are required")
	}

	imagingType := req.ImagingType
	if imagingType == "" {
		imagingType = ImagingXRay
	}
	if !imagingType.IsValid() {
		return "", common.NewInvalidInputError("imaging type must be X-ray, CT Scan or Other")
	}

	jpeg, err := NormalizeImage(image, s.maxDim)
	if err != nil {
		return "", err
	}

	summary, err := s.model.GenerateSummary(ctx, base64.StdEncoding.EncodeToString(jpeg),
		req.ClinicalNotes, req.LabValues, imagingType, req.Language)
	if err != nil {
		return "", err
	}

	s.log.Info("summary generated",
		zap.String("imaging_type", string(imagingType)),
		zap.String("language", LanguageName(req.Language)),
		zap.Int("image_bytes", len(jpeg)),
	)
	return summary, nil
}
