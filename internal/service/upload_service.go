package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"chunkrelay/internal/domain"
	"chunkrelay/internal/planner"
	"chunkrelay/internal/port"
)

// PartTarget is one relay-side upload target handed to the client.
type PartTarget struct {
	PartNumber int    `json:"partNumber"`
	URL        string `json:"url"`
}

// InitiateOutput is the DTO returned by Initiate. For simple mode only
// UploadURL is set; for multipart mode UploadID and Parts are set.
type InitiateOutput struct {
	Mode      domain.UploadMode `json:"mode"`
	Key       string            `json:"key"`
	ChunkSize int64             `json:"chunkSize,omitempty"`
	UploadURL string            `json:"uploadUrl,omitempty"`
	UploadID  string            `json:"uploadId,omitempty"`
	Parts     []PartTarget      `json:"parts,omitempty"`
}

// UploadService coordinates the multipart protocol for client-driven
// uploads: initiate, per-part recording, sorted completion, abort.
type UploadService interface {
	Initiate(ctx context.Context, filename string, fileSize int64) (*InitiateOutput, error)
	PutSimple(ctx context.Context, key string, body io.Reader, size int64) (string, error)
	UploadPart(ctx context.Context, uploadID string, partNumber int, body io.Reader, size int64) (domain.CompletedPart, error)
	Complete(ctx context.Context, uploadID string, parts []domain.CompletedPart) error
	Abort(ctx context.Context, uploadID string) error
}

type uploadService struct {
	storage   port.ObjectStorage
	chunkSize int64

	mu       sync.Mutex
	sessions map[string]*domain.UploadSession
}

// NewUploadService creates a new UploadService implementation.
func NewUploadService(storage port.ObjectStorage, chunkSize int64) UploadService {
	if chunkSize <= 0 {
		chunkSize = domain.DefaultChunkSize
	}
	return &uploadService{
		storage:   storage,
		chunkSize: chunkSize,
		sessions:  map[string]*domain.UploadSession{},
	}
}

func (s *uploadService) Initiate(ctx context.Context, filename string, fileSize int64) (*InitiateOutput, error) {
	key, err := objectKey(filename)
	if err != nil {
		return nil, err
	}

	// Plan before touching the backend: limit violations never leave the relay.
	plan, err := planner.Plan(fileSize, s.chunkSize)
	if err != nil {
		return nil, err
	}

	if plan.Mode == domain.ModeSimple {
		return &InitiateOutput{
			Mode:      domain.ModeSimple,
			Key:       key,
			UploadURL: "/upload/object?key=" + url.QueryEscape(key),
		}, nil
	}

	uploadID, err := s.storage.CreateMultipart(ctx, key, contentTypeFor(key))
	if err != nil {
		return nil, err
	}

	session := &domain.UploadSession{
		Key:       key,
		UploadID:  uploadID,
		Plan:      plan,
		State:     domain.StateAwaitingParts,
		Completed: map[int]domain.CompletedPart{},
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.sessions[uploadID] = session
	s.mu.Unlock()

	targets := make([]PartTarget, 0, plan.PartCount())
	for _, p := range plan.Parts {
		targets = append(targets, PartTarget{
			PartNumber: p.PartNumber,
			URL: fmt.Sprintf("/upload/part?uploadId=%s&partNumber=%d",
				url.QueryEscape(uploadID), p.PartNumber),
		})
	}

	return &InitiateOutput{
		Mode:      domain.ModeMultipart,
		Key:       key,
		ChunkSize: plan.ChunkSize,
		UploadID:  uploadID,
		Parts:     targets,
	}, nil
}

func (s *uploadService) PutSimple(ctx context.Context, key string, body io.Reader, size int64) (string, error) {
	key, err := objectKey(key)
	if err != nil {
		return "", err
	}
	return s.storage.PutObject(ctx, key, body, size, contentTypeFor(key))
}

func (s *uploadService) UploadPart(ctx context.Context, uploadID string, partNumber int, body io.Reader, size int64) (domain.CompletedPart, error) {
	s.mu.Lock()
	session, ok := s.sessions[uploadID]
	if !ok {
		s.mu.Unlock()
		return domain.CompletedPart{}, domain.ErrSessionNotFound
	}
	if session.State != domain.StateAwaitingParts {
		s.mu.Unlock()
		return domain.CompletedPart{}, domain.ErrSessionTerminated
	}
	key := session.Key
	partCount := session.Plan.PartCount()
	s.mu.Unlock()

	if partNumber < 1 || partNumber > partCount {
		return domain.CompletedPart{}, fmt.Errorf(
			"part %d of %d: %w", partNumber, partCount, domain.ErrPartOutOfRange)
	}

	etag, err := s.storage.UploadPart(ctx, key, uploadID, partNumber, body, size)
	if err != nil {
		return domain.CompletedPart{}, err
	}

	part := domain.CompletedPart{PartNumber: partNumber, ETag: etag}

	// Re-uploading a part number overwrites the prior attempt, matching the
	// backend's idempotency per (uploadID, partNumber).
	s.mu.Lock()
	if cur, ok := s.sessions[uploadID]; ok {
		cur.Completed[partNumber] = part
	}
	s.mu.Unlock()

	return part, nil
}

func (s *uploadService) Complete(ctx context.Context, uploadID string, parts []domain.CompletedPart) error {
	s.mu.Lock()
	session, ok := s.sessions[uploadID]
	if !ok {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	if session.State != domain.StateAwaitingParts {
		s.mu.Unlock()
		return domain.ErrSessionTerminated
	}
	if err := validatePartSet(session.Plan.PartCount(), session.Completed, parts); err != nil {
		s.mu.Unlock()
		return err
	}
	session.State = domain.StateCompleting
	key := session.Key
	s.mu.Unlock()

	// Parts may have been recorded in any order; the backend rejects
	// out-of-order completion lists.
	sorted := make([]domain.CompletedPart, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PartNumber < sorted[j].PartNumber })

	if err := s.storage.CompleteMultipart(ctx, key, uploadID, sorted); err != nil {
		// No auto-abort here: the session stays retryable so the caller can
		// issue Complete again or decide to Abort.
		s.mu.Lock()
		if cur, ok := s.sessions[uploadID]; ok {
			cur.State = domain.StateAwaitingParts
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	session.State = domain.StateDone
	delete(s.sessions, uploadID)
	s.mu.Unlock()

	log.Printf("upload %s completed: %s (%d parts)", uploadID, key, len(parts))
	return nil
}

func (s *uploadService) Abort(ctx context.Context, uploadID string) error {
	s.mu.Lock()
	session, ok := s.sessions[uploadID]
	if ok {
		session.State = domain.StateAborted
		delete(s.sessions, uploadID)
	}
	s.mu.Unlock()

	if !ok {
		// Aborting twice, or after complete, is a no-op.
		return nil
	}

	if err := s.storage.AbortMultipart(ctx, session.Key, uploadID); err != nil {
		// The session is torn down regardless; the backend TTL reclaims
		// anything the abort call could not.
		log.Printf("abort %s: backend error: %v", uploadID, err)
		return err
	}

	log.Printf("upload %s aborted: %s", uploadID, session.Key)
	return nil
}

// validatePartSet checks that the submitted parts cover exactly 1..partCount
// with no duplicates and no out-of-range numbers, and that every submitted
// part matches one recorded through this session. A part number the relay
// never saw, or an etag differing from the recorded one, cannot be committed.
func validatePartSet(partCount int, recorded map[int]domain.CompletedPart, parts []domain.CompletedPart) error {
	if len(parts) != partCount {
		return fmt.Errorf("got %d parts, planned %d: %w", len(parts), partCount, domain.ErrPartSetIncomplete)
	}
	seen := make(map[int]bool, len(parts))
	for _, p := range parts {
		if p.PartNumber < 1 || p.PartNumber > partCount {
			return fmt.Errorf("part %d of %d: %w", p.PartNumber, partCount, domain.ErrPartOutOfRange)
		}
		if seen[p.PartNumber] {
			return fmt.Errorf("part %d: %w", p.PartNumber, domain.ErrDuplicatePart)
		}
		seen[p.PartNumber] = true

		rec, ok := recorded[p.PartNumber]
		if !ok {
			return fmt.Errorf("part %d was never uploaded in this session: %w",
				p.PartNumber, domain.ErrPartSetIncomplete)
		}
		if rec.ETag != p.ETag {
			return fmt.Errorf("part %d etag does not match the uploaded part: %w",
				p.PartNumber, domain.ErrPartSetIncomplete)
		}
	}
	return nil
}

// objectKey sanitizes a client-supplied filename into a flat object key.
func objectKey(filename string) (string, error) {
	key := path.Base(filepath.ToSlash(filename))
	if key == "" || key == "." || key == ".." || key == "/" {
		return "", domain.ErrInvalidKey
	}
	return key, nil
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
