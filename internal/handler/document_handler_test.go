package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gasdoc/internal/domain"
	"gasdoc/internal/handler"
	"gasdoc/internal/service"
	"gasdoc/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var textDoc = &domain.Document{Name: "statement.txt", Content: []byte("Statement of Account"), ContentType: "text/plain"}

func newRouter(h *handler.DocumentHandler) *gin.Engine {
	r := gin.New()
	r.GET("/api/v1/document-types", h.ListTypes)
	r.POST("/api/v1/documents/classify", h.Classify)
	r.POST("/api/v1/documents/process", h.Process)
	r.POST("/api/v1/documents/:type/process", h.ProcessAs)
	return r
}

// uploadRequest builds a multipart request with a "file" part and optional form fields.
func uploadRequest(t *testing.T, path, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, _ = part.Write(content)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDocumentHandler_ListTypes(t *testing.T) {
	docSvc := new(mocks.MockDocumentService)
	docSvc.On("ListTypes").Return(domain.DocumentTypes())
	r := newRouter(handler.NewDocumentHandler(new(mocks.MockFileService), docSvc, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/document-types", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"documentTypes":[
		"supply_multi_platform","single_platform_statement","multi_vendor_platform_invoice","field_purchase_invoice"]}}`,
		w.Body.String())
}

func TestDocumentHandler_Classify(t *testing.T) {
	fileSvc := new(mocks.MockFileService)
	docSvc := new(mocks.MockDocumentService)
	fileSvc.On("Read", mock.Anything, mock.MatchedBy(func(in service.FileInput) bool {
		return in.Name == "statement.txt"
	})).Return(textDoc, nil)
	docSvc.On("Classify", mock.Anything, *textDoc).Return(&domain.ClassificationResult{
		DocumentType: domain.DocTypeSinglePlatformStatement,
		Confidence:   92,
		Reasoning:    "statement of account",
	}, nil)
	r := newRouter(handler.NewDocumentHandler(fileSvc, docSvc, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/documents/classify", "statement.txt", textDoc.Content, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "single_platform_statement", data["documentType"])
	assert.EqualValues(t, 92, data["confidence"])
	fileSvc.AssertExpectations(t)
	docSvc.AssertExpectations(t)
}

func TestDocumentHandler_MissingFile(t *testing.T) {
	r := newRouter(handler.NewDocumentHandler(new(mocks.MockFileService), new(mocks.MockDocumentService), nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/documents/classify", "", nil, map[string]string{"x": "y"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decode(t, w).Error.Code)
}

func TestDocumentHandler_UploadRejected(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrInvalidPDF, http.StatusBadRequest, "INVALID_PDF"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			fileSvc := new(mocks.MockFileService)
			fileSvc.On("Read", mock.Anything, mock.Anything).Return(nil, tc.err)
			r := newRouter(handler.NewDocumentHandler(fileSvc, new(mocks.MockDocumentService), nil))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, uploadRequest(t, "/api/v1/documents/process", "scan.pdf", []byte("x"), nil))

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decode(t, w).Error.Code)
		})
	}
}

func TestDocumentHandler_ProcessWithFormType(t *testing.T) {
	fileSvc := new(mocks.MockFileService)
	docSvc := new(mocks.MockDocumentService)
	fileSvc.On("Read", mock.Anything, mock.Anything).Return(textDoc, nil)
	dt := domain.DocTypeSinglePlatformStatement
	docSvc.On("Process", mock.Anything, *textDoc, &dt).Return(&service.ProcessResult{
		DocumentType:      dt,
		Output:            domain.OutputRecord{"statements": []any{}, "overall_confidence_score": 20.0},
		OverallConfidence: 20,
	}, nil)
	r := newRouter(handler.NewDocumentHandler(fileSvc, docSvc, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/documents/process", "statement.txt", textDoc.Content,
		map[string]string{"document_type": "Single_Platform_Statement"}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{
		"documentType":"single_platform_statement",
		"output":{"statements":[],"overall_confidence_score":20},
		"overallConfidence":20}}`, w.Body.String())
	docSvc.AssertExpectations(t)
}

func TestDocumentHandler_ProcessWithoutType(t *testing.T) {
	fileSvc := new(mocks.MockFileService)
	docSvc := new(mocks.MockDocumentService)
	fileSvc.On("Read", mock.Anything, mock.Anything).Return(textDoc, nil)
	docSvc.On("Process", mock.Anything, *textDoc, (*domain.DocumentType)(nil)).
		Return(&service.ProcessResult{DocumentType: domain.DocTypeUnknown}, &domain.UnsupportedTypeError{DocumentType: domain.DocTypeUnknown})
	r := newRouter(handler.NewDocumentHandler(fileSvc, docSvc, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/documents/process", "statement.txt", textDoc.Content, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "UNSUPPORTED_DOCUMENT_TYPE", resp.Error.Code)
	assert.Equal(t, "DocumentType=unknown cannot be processed", resp.Error.Message)
}

func TestDocumentHandler_ProcessAsInvalidType(t *testing.T) {
	fileSvc := new(mocks.MockFileService)
	r := newRouter(handler.NewDocumentHandler(fileSvc, new(mocks.MockDocumentService), nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/documents/jda_summary/process", "a.txt", []byte("a"), nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DOCUMENT_TYPE", decode(t, w).Error.Code)
	fileSvc.AssertNotCalled(t, "Read", mock.Anything, mock.Anything)
}

func TestDocumentHandler_ProcessErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"schema", &domain.SchemaValidationError{DocumentType: domain.DocTypeFieldPurchaseInvoice, Field: "amountUSD", Row: -1, Expected: "number", Observed: "missing"},
			http.StatusUnprocessableEntity, "SCHEMA_VALIDATION_FAILED"},
		{"extractor", &domain.ExtractorUnavailableError{Op: "extract", Err: errors.New("503")},
			http.StatusServiceUnavailable, "EXTRACTOR_UNAVAILABLE"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fileSvc := new(mocks.MockFileService)
			docSvc := new(mocks.MockDocumentService)
			fileSvc.On("Read", mock.Anything, mock.Anything).Return(textDoc, nil)
			docSvc.On("Process", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)
			r := newRouter(handler.NewDocumentHandler(fileSvc, docSvc, nil))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, uploadRequest(t, "/api/v1/documents/field_purchase_invoice/process", "memo.txt", []byte("memo"), nil))

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decode(t, w).Error.Code)
		})
	}
}

func TestDocumentHandler_SchemaErrorDetails(t *testing.T) {
	fileSvc := new(mocks.MockFileService)
	docSvc := new(mocks.MockDocumentService)
	fileSvc.On("Read", mock.Anything, mock.Anything).Return(textDoc, nil)
	docSvc.On("Process", mock.Anything, mock.Anything, mock.Anything).Return(nil, &domain.SchemaValidationError{
		DocumentType: domain.DocTypeFieldPurchaseInvoice, Field: "amountUSD", Row: -1, Expected: "number", Observed: "missing",
	})
	r := newRouter(handler.NewDocumentHandler(fileSvc, docSvc, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/documents/process", "memo.txt", []byte("memo"), nil))

	details := decode(t, w).Error.Details.(map[string]interface{})
	assert.Equal(t, "amountUSD", details["field"])
	assert.Equal(t, "missing", details["observed"])
	assert.EqualValues(t, -1, details["row"])
}
