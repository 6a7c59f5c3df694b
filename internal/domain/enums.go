package domain

// UploadMode selects between a single-shot put and a multipart session.
type UploadMode string

const (
	ModeSimple    UploadMode = "simple"
	ModeMultipart UploadMode = "multipart"
)

// UploadState represents the lifecycle of a multipart upload session. A
// session is only registered once its plan exists and the backend accepted
// the multipart create, so AwaitingParts is the initial state.
type UploadState string

const (
	StateAwaitingParts UploadState = "awaiting_parts"
	StateCompleting    UploadState = "completing"
	StateDone          UploadState = "done"
	StateAborted       UploadState = "aborted"
)

// Backend constraints shared between planner, relay, and client.
const (
	// DefaultChunkSize is the part size used when the config does not override it.
	DefaultChunkSize int64 = 10 * 1024 * 1024

	// MinPartSize is the smallest part the backend accepts (except the last one).
	MinPartSize int64 = 5 * 1024 * 1024

	// MaxParts is the largest part count the backend accepts per upload.
	MaxParts = 10000
)
