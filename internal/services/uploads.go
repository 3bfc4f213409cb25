package services

import (
	"context"
	"errors"
	"strings"

	"github.com/caseworks/licensure-materials/internal/blob"
	"github.com/caseworks/licensure-materials/internal/models"
	"github.com/caseworks/licensure-materials/internal/storagekeys"
	"github.com/caseworks/licensure-materials/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// BeginUploadResult is everything the client needs to push bytes to the blob
// store and then confirm the upload.
type BeginUploadResult struct {
	UploadURL      string `json:"upload_url"`
	StoragePath    string `json:"storage_path"`
	SystemFilename string `json:"system_filename"`
	Version        uint   `json:"version"`
}

// BeginUpload reserves the next version number for a slot and issues a signed
// PUT URL for it. Nothing is persisted here; the version is only provisional
// until CompleteUpload records it, so an abandoned upload costs nothing but
// an orphaned object key.
func BeginUpload(ctx context.Context, db *gorm.DB, signer blob.Signer, slotID, userID, originalFilename, mimeType string) (BeginUploadResult, error) {
	if strings.TrimSpace(originalFilename) == "" {
		return BeginUploadResult{}, types.NewValidation("materials.upload.begin", "original filename is required")
	}

	owner, err := ResolveSlotOwnership(db, slotID, userID)
	if err != nil {
		return BeginUploadResult{}, wrapUntyped("materials.upload.begin", err)
	}

	version, err := nextVersion(db, slotID)
	if err != nil {
		return BeginUploadResult{}, types.NewUpstream("materials.upload.begin", err)
	}

	ext := storagekeys.NormalizeExt(originalFilename)
	code := string(owner.SlotCode)
	path := storagekeys.StoragePath(userID, owner.ApplicationID, owner.IncidentID, code,
		version, ext, storagekeys.NewCollisionToken())
	systemName := storagekeys.SystemFilename(
		storagekeys.ShortLabel(owner.ApplicationID),
		storagekeys.ShortLabel(owner.IncidentID),
		code, version, ext)

	url, err := signer.IssueUploadURL(ctx, path, mimeType)
	if err != nil {
		return BeginUploadResult{}, types.NewUpstream("materials.upload.begin", err)
	}

	return BeginUploadResult{
		UploadURL:      url,
		StoragePath:    path,
		SystemFilename: systemName,
		Version:        version,
	}, nil
}

// CompleteUploadInput echoes back what BeginUpload handed out, plus the
// observed byte size.
type CompleteUploadInput struct {
	OriginalFilename string `json:"original_filename"`
	SystemFilename   string `json:"system_filename"`
	StoragePath      string `json:"storage_path"`
	MimeType         string `json:"mime_type"`
	Version          uint   `json:"version"`
	SizeBytes        int64  `json:"size_bytes"`
}

// CompleteUpload records a finished upload as the slot's new active version.
// The previous active file (if any) is deactivated and linked forward to the
// new row. Two completions racing for the same version are arbitrated by the
// (slot_id, version) unique index; the loser gets a conflict and should retry
// from BeginUpload.
func CompleteUpload(db *gorm.DB, slotID, userID string, in CompleteUploadInput) (models.UploadedFile, error) {
	if strings.TrimSpace(in.OriginalFilename) == "" {
		return models.UploadedFile{}, types.NewValidation("materials.upload.complete", "original filename is required")
	}
	if in.Version == 0 {
		return models.UploadedFile{}, types.NewValidation("materials.upload.complete", "version must be positive")
	}
	if strings.TrimSpace(in.StoragePath) == "" {
		return models.UploadedFile{}, types.NewValidation("materials.upload.complete", "storage path is required")
	}

	var file models.UploadedFile
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := ResolveSlotOwnership(tx, slotID, userID); err != nil {
			return err
		}

		// Serialize completions per slot so the deactivate-then-activate
		// handoff is atomic.
		var slot models.DocumentSlot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", slotID).
			First(&slot).Error; err != nil {
			return err
		}

		var actives []models.UploadedFile
		if err := tx.Where("slot_id = ? AND is_active = ?", slotID, true).
			Find(&actives).Error; err != nil {
			return err
		}

		file = models.UploadedFile{
			SlotID:           slotID,
			OriginalFilename: in.OriginalFilename,
			SystemFilename:   in.SystemFilename,
			Version:          in.Version,
			StoragePath:      in.StoragePath,
			MimeType:         in.MimeType,
			SizeBytes:        in.SizeBytes,
			IsActive:         true,
			UploadedBy:       userID,
		}
		if err := tx.Create(&file).Error; err != nil {
			if isUniqueViolation(err) {
				return types.NewConflict("materials.upload.complete",
					"version already recorded for this slot; restart the upload")
			}
			return err
		}

		for i := range actives {
			if err := tx.Model(&actives[i]).Updates(map[string]interface{}{
				"is_active":           false,
				"replaced_by_file_id": file.ID,
			}).Error; err != nil {
				return err
			}
		}

		return tx.Model(&slot).Update("status", models.SlotStatusUploaded).Error
	})
	if err != nil {
		return models.UploadedFile{}, wrapUntyped("materials.upload.complete", err)
	}
	return file, nil
}

// FileDownloadURL issues a signed GET URL for a previously recorded file,
// after re-verifying the caller owns the slot the file belongs to.
func FileDownloadURL(ctx context.Context, db *gorm.DB, signer blob.Signer, fileID, userID string) (string, error) {
	var file models.UploadedFile
	if err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Where("id = ?", fileID).
		First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", types.NewNotFound("materials.file.download", "file not found")
		}
		return "", types.NewUpstream("materials.file.download", err)
	}

	if _, err := ResolveSlotOwnership(db, file.SlotID, userID); err != nil {
		if types.IsNotFound(err) {
			return "", types.NewNotFound("materials.file.download", "file not found")
		}
		return "", wrapUntyped("materials.file.download", err)
	}

	url, err := signer.IssueDownloadURL(ctx, file.StoragePath)
	if err != nil {
		return "", types.NewUpstream("materials.file.download", err)
	}
	return url, nil
}

// nextVersion reads the provisional next version for a slot.
func nextVersion(db *gorm.DB, slotID string) (uint, error) {
	var current uint
	err := db.Model(&models.UploadedFile{}).
		Where("slot_id = ?", slotID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

// wrapUntyped passes typed engine errors through and wraps anything else as
// an upstream failure.
func wrapUntyped(errorType string, err error) error {
	if err == nil || types.KindOf(err) != "" {
		return err
	}
	return types.NewUpstream(errorType, err)
}
