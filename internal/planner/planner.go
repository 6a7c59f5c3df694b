// Package planner computes the part layout for an upload: whether the file
// needs a multipart session at all, and if so the ordered byte ranges.
package planner

import (
	"fmt"

	"chunkrelay/internal/domain"
)

// Plan decides the upload mode for a file of fileSize bytes with the given
// chunk size and, for multipart mode, lays out contiguous 1-based parts
// covering exactly [0, fileSize). It is pure: same inputs, same plan.
func Plan(fileSize, chunkSize int64) (domain.UploadPlan, error) {
	if fileSize < 0 {
		return domain.UploadPlan{}, fmt.Errorf("file size must be >= 0, got %d", fileSize)
	}
	if chunkSize <= 0 {
		return domain.UploadPlan{}, fmt.Errorf("chunk size must be > 0, got %d: %w", chunkSize, domain.ErrChunkTooSmall)
	}

	if fileSize <= chunkSize {
		return domain.UploadPlan{
			Mode:      domain.ModeSimple,
			FileSize:  fileSize,
			ChunkSize: chunkSize,
		}, nil
	}

	if chunkSize < domain.MinPartSize {
		return domain.UploadPlan{}, fmt.Errorf(
			"chunk size %d below minimum %d: %w", chunkSize, domain.MinPartSize, domain.ErrChunkTooSmall)
	}

	partCount := int((fileSize + chunkSize - 1) / chunkSize)
	if partCount > domain.MaxParts {
		return domain.UploadPlan{}, fmt.Errorf(
			"file of %d bytes needs %d parts, max is %d: %w", fileSize, partCount, domain.MaxParts, domain.ErrTooManyParts)
	}

	parts := make([]domain.PartDescriptor, 0, partCount)
	for i := 0; i < partCount; i++ {
		offset := int64(i) * chunkSize
		size := chunkSize
		if offset+size > fileSize {
			size = fileSize - offset
		}
		parts = append(parts, domain.PartDescriptor{
			PartNumber: i + 1,
			Offset:     offset,
			Size:       size,
		})
	}

	return domain.UploadPlan{
		Mode:      domain.ModeMultipart,
		FileSize:  fileSize,
		ChunkSize: chunkSize,
		Parts:     parts,
	}, nil
}
