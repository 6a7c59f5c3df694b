package domain

import "time"

// PartDescriptor is one planned part: a 1-based part number and the byte
// range [Offset, Offset+Size) it covers in the source file.
type PartDescriptor struct {
	PartNumber int   `json:"partNumber"`
	Offset     int64 `json:"offset"`
	Size       int64 `json:"size"`
}

// UploadPlan is the planner's output for one file.
type UploadPlan struct {
	Mode      UploadMode       `json:"mode"`
	FileSize  int64            `json:"fileSize"`
	ChunkSize int64            `json:"chunkSize"`
	Parts     []PartDescriptor `json:"parts,omitempty"`
}

// PartCount returns the number of planned parts (zero in simple mode).
func (p UploadPlan) PartCount() int {
	return len(p.Parts)
}

// CompletedPart is the result of one successful part upload.
type CompletedPart struct {
	PartNumber int    `json:"partNumber"`
	ETag       string `json:"etag"`
}

// UploadSession is the coordinator's transient view of one in-flight
// multipart upload. The backend owns the session; this struct only tracks
// the plan and the parts recorded so far.
type UploadSession struct {
	Key       string
	UploadID  string
	Plan      UploadPlan
	State     UploadState
	Completed map[int]CompletedPart
	CreatedAt time.Time
}

// ObjectInfo describes one committed object in the store.
type ObjectInfo struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}
