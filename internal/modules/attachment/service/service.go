package attachment

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"anoa.com/learnhub/internal/entity"
	activity "anoa.com/learnhub/internal/modules/activity/service"
	"anoa.com/learnhub/internal/modules/attachment/dto"
	"anoa.com/learnhub/internal/modules/attachment/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/storage"
)

const (
	MaxUploadBytes = 20 << 20
	OrphanTTL      = 24 * time.Hour
)

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".pdf": true, ".doc": true, ".docx": true, ".ppt": true, ".pptx": true,
	".xls": true, ".xlsx": true, ".txt": true, ".zip": true, ".mp4": true,
}

type AttachmentService interface {
	Upload(ctx context.Context, actor commonDto.Actor, file commonDto.UploadFile, size int64) (*dto.UploadAttachmentResponse, error)
	CleanupOrphans(ctx context.Context) (*dto.CleanupReport, error)
}

type attachmentService struct {
	repo        repository.AttachmentRepository
	fileStorage storage.FileStorage
	activity    activity.ActivityService
	now         func() time.Time
}

func NewAttachmentService(repo repository.AttachmentRepository, fileStorage storage.FileStorage, activity activity.ActivityService) AttachmentService {
	return &attachmentService{
		repo:        repo,
		fileStorage: fileStorage,
		activity:    activity,
		now:         time.Now,
	}
}

func (s *attachmentService) Upload(ctx context.Context, actor commonDto.Actor, file commonDto.UploadFile, size int64) (*dto.UploadAttachmentResponse, error) {
	if s.fileStorage == nil {
		return nil, fmt.Errorf("file storage is not configured: %w", apperror.ErrServiceUnavailable)
	}
	if size > MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds %d MB: %w", MaxUploadBytes>>20, apperror.ErrBadRequest)
	}
	ext := strings.ToLower(filepath.Ext(file.FileName))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("file type %q is not allowed: %w", ext, apperror.ErrBadRequest)
	}

	url, err := s.fileStorage.Upload(ctx, file.Reader, "attachments", file.FileName)
	if err != nil {
		return nil, err
	}

	attachment := &entity.Attachment{
		UserID:   actor.ID,
		FileURL:  url,
		FileName: filepath.Base(file.FileName),
		FileType: file.ContentType,
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		if delErr := s.fileStorage.Delete(ctx, url); delErr != nil {
			log.Printf("[attachment] failed to remove %s after db error: %v", url, delErr)
		}
		return nil, err
	}

	s.activity.Record(ctx, actor, activity.ActionAttachmentUploaded, "attachment", fmt.Sprint(attachment.ID), map[string]any{
		"file_type": attachment.FileType,
	})

	return &dto.UploadAttachmentResponse{
		ID:       attachment.ID,
		FileURL:  attachment.FileURL,
		FileName: attachment.FileName,
		FileType: attachment.FileType,
	}, nil
}

// CleanupOrphans deletes uploads never linked to a lesson within OrphanTTL.
// Rows whose file could not be removed are kept for the next run.
func (s *attachmentService) CleanupOrphans(ctx context.Context) (*dto.CleanupReport, error) {
	orphans, err := s.repo.FindOrphans(ctx, s.now().Add(-OrphanTTL))
	if err != nil {
		return nil, err
	}

	report := &dto.CleanupReport{Found: len(orphans)}
	for _, orphan := range orphans {
		if s.fileStorage != nil {
			if err := s.fileStorage.Delete(ctx, orphan.FileURL); err != nil {
				log.Printf("[attachment] failed to delete %s: %v", orphan.FileURL, err)
				report.Failed++
				continue
			}
		}
		if err := s.repo.Delete(ctx, orphan.ID); err != nil {
			log.Printf("[attachment] failed to delete row %d: %v", orphan.ID, err)
			report.Failed++
			continue
		}
		report.Deleted++
	}
	return report, nil
}
