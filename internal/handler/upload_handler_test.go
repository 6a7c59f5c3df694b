package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chunkrelay/internal/config"
	"chunkrelay/internal/domain"
	"chunkrelay/internal/handler"
	"chunkrelay/internal/router"
	"chunkrelay/internal/service"
	"chunkrelay/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testRelay struct {
	engine    *gin.Engine
	uploadSvc *mocks.MockUploadService
	objectSvc *mocks.MockObjectService
	storage   *mocks.MockObjectStorage
}

func newTestRelay() *testRelay {
	uploadSvc := new(mocks.MockUploadService)
	objectSvc := new(mocks.MockObjectService)
	storage := new(mocks.MockObjectStorage)

	cfg := &config.Config{}
	engine := router.Setup(cfg,
		handler.NewUploadHandler(uploadSvc),
		handler.NewObjectHandler(objectSvc),
		handler.NewHealthHandler(storage),
	)
	return &testRelay{engine: engine, uploadSvc: uploadSvc, objectSvc: objectSvc, storage: storage}
}

func (r *testRelay) do(method, path string, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestInitiate_BadBody(t *testing.T) {
	r := newTestRelay()

	w := r.do(http.MethodPost, "/upload/initiate", "not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_BODY", resp.Error.Code)
}

func TestInitiate_MissingFields(t *testing.T) {
	r := newTestRelay()

	w := r.do(http.MethodPost, "/upload/initiate", `{"fileSize": 100}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILENAME", decodeEnvelope(t, w).Error.Code)

	w = r.do(http.MethodPost, "/upload/initiate", `{"filename": "a.bin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FILE_SIZE", decodeEnvelope(t, w).Error.Code)
}

func TestInitiate_PlanLimitViolation(t *testing.T) {
	r := newTestRelay()

	r.uploadSvc.On("Initiate", mock.Anything, "huge.bin", int64(1<<40)).
		Return(nil, domain.ErrTooManyParts).Once()

	w := r.do(http.MethodPost, "/upload/initiate", `{"filename": "huge.bin", "fileSize": 1099511627776}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "TOO_MANY_PARTS", decodeEnvelope(t, w).Error.Code)
}

func TestInitiate_Multipart(t *testing.T) {
	r := newTestRelay()

	out := &service.InitiateOutput{
		Mode:      domain.ModeMultipart,
		Key:       "big.bin",
		ChunkSize: 10 * 1024 * 1024,
		UploadID:  "uid-1",
		Parts: []service.PartTarget{
			{PartNumber: 1, URL: "/upload/part?uploadId=uid-1&partNumber=1"},
			{PartNumber: 2, URL: "/upload/part?uploadId=uid-1&partNumber=2"},
		},
	}
	r.uploadSvc.On("Initiate", mock.Anything, "big.bin", int64(15<<20)).Return(out, nil).Once()

	w := r.do(http.MethodPost, "/upload/initiate", `{"filename": "big.bin", "fileSize": 15728640}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeEnvelope(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "multipart", data["mode"])
	assert.Equal(t, "uid-1", data["uploadId"])
	assert.Len(t, data["parts"], 2)
}

func TestPutPart_MissingParams(t *testing.T) {
	r := newTestRelay()

	w := r.do(http.MethodPut, "/upload/part?partNumber=1", "data")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_UPLOAD_ID", decodeEnvelope(t, w).Error.Code)

	w = r.do(http.MethodPut, "/upload/part?uploadId=uid-1", "data")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PART_NUMBER", decodeEnvelope(t, w).Error.Code)

	w = r.do(http.MethodPut, "/upload/part?uploadId=uid-1&partNumber=zero", "data")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PART_NUMBER", decodeEnvelope(t, w).Error.Code)
}

func TestPutPart_ReturnsEtag(t *testing.T) {
	r := newTestRelay()

	r.uploadSvc.On("UploadPart", mock.Anything, "uid-1", 2, mock.Anything, mock.Anything).
		Return(domain.CompletedPart{PartNumber: 2, ETag: `"abc"`}, nil).Once()

	w := r.do(http.MethodPut, "/upload/part?uploadId=uid-1&partNumber=2", "part bytes")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeEnvelope(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, `"abc"`, data["etag"])
	assert.EqualValues(t, 2, data["partNumber"])
}

func TestPutPart_BackendErrorCarriesDetails(t *testing.T) {
	r := newTestRelay()

	backendErr := domain.NewBackendError("upload_part", "big.bin", errors.New("NoSuchUpload: The specified upload does not exist"))
	r.uploadSvc.On("UploadPart", mock.Anything, "uid-1", 1, mock.Anything, mock.Anything).
		Return(domain.CompletedPart{}, backendErr).Once()

	w := r.do(http.MethodPut, "/upload/part?uploadId=uid-1&partNumber=1", "part bytes")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "BACKEND_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "NoSuchUpload")
}

func TestComplete_Validation(t *testing.T) {
	r := newTestRelay()

	w := r.do(http.MethodPost, "/upload/complete", `{"filename": "a", "parts": [{"partNumber":1,"etag":"e"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_UPLOAD_ID", decodeEnvelope(t, w).Error.Code)

	w = r.do(http.MethodPost, "/upload/complete", `{"filename": "a", "uploadId": "uid-1", "parts": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_PARTS", decodeEnvelope(t, w).Error.Code)

	w = r.do(http.MethodPost, "/upload/complete", `{"filename": "a", "uploadId": "uid-1", "parts": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_BODY", decodeEnvelope(t, w).Error.Code)
}

func TestComplete_PartSetMismatch(t *testing.T) {
	r := newTestRelay()

	r.uploadSvc.On("Complete", mock.Anything, "uid-1", mock.Anything).
		Return(domain.ErrPartSetIncomplete).Once()

	w := r.do(http.MethodPost, "/upload/complete",
		`{"filename": "a", "uploadId": "uid-1", "parts": [{"partNumber":1,"etag":"e1"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "PART_SET_INCOMPLETE", decodeEnvelope(t, w).Error.Code)
}

func TestComplete_Success(t *testing.T) {
	r := newTestRelay()

	r.uploadSvc.On("Complete", mock.Anything, "uid-1", []domain.CompletedPart{
		{PartNumber: 1, ETag: "e1"},
		{PartNumber: 2, ETag: "e2"},
	}).Return(nil).Once()

	w := r.do(http.MethodPost, "/upload/complete",
		`{"filename": "a", "uploadId": "uid-1", "parts": [{"partNumber":1,"etag":"e1"},{"partNumber":2,"etag":"e2"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)
}

func TestAbort_BackendErrorStillStructured(t *testing.T) {
	r := newTestRelay()

	backendErr := domain.NewBackendError("abort_multipart", "a.bin", errors.New("store unavailable"))
	r.uploadSvc.On("Abort", mock.Anything, "uid-1").Return(backendErr).Once()

	w := r.do(http.MethodPost, "/upload/abort", `{"filename": "a.bin", "uploadId": "uid-1"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Details, "store unavailable")
}

func TestAbort_Success(t *testing.T) {
	r := newTestRelay()

	r.uploadSvc.On("Abort", mock.Anything, "uid-1").Return(nil).Once()

	w := r.do(http.MethodPost, "/upload/abort", `{"filename": "a.bin", "uploadId": "uid-1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)
}

func TestPutObject_SimpleMode(t *testing.T) {
	r := newTestRelay()

	r.uploadSvc.On("PutSimple", mock.Anything, "small.bin", mock.Anything, mock.Anything).
		Return(`"etag-s"`, nil).Once()

	w := r.do(http.MethodPut, "/upload/object?key=small.bin", "whole file")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, `"etag-s"`, data["etag"])
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRelay()

	req := httptest.NewRequest(http.MethodOptions, "/upload/initiate", strings.NewReader(""))
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET,HEAD,POST,PUT,OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}
