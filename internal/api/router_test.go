package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
	"time"

	"gagyebu/internal/api/handlers"
	"gagyebu/internal/dto"
	"gagyebu/internal/models"
	"gagyebu/internal/repository"
	"gagyebu/internal/service"
	"gagyebu/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCategoryRepo is an in-memory stand-in for the category repository.
type fakeCategoryRepo struct {
	byID map[uuid.UUID]*models.Category
}

func newFakeCategoryRepo(names ...string) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{byID: map[uuid.UUID]*models.Category{}}
	for _, name := range names {
		cat := &models.Category{
			ID:        uuid.New(),
			Name:      name,
			Type:      models.TypeExpense,
			CreatedAt: time.Now().UTC(),
		}
		repo.byID[cat.ID] = cat
	}
	return repo
}

func (r *fakeCategoryRepo) Create(ctx context.Context, cat *models.Category) error {
	r.byID[cat.ID] = cat
	return nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	cat, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cat, nil
}

func (r *fakeCategoryRepo) GetByName(ctx context.Context, name string) (*models.Category, error) {
	for _, cat := range r.byID {
		if cat.Name == name {
			return cat, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCategoryRepo) List(ctx context.Context, categoryType string) ([]*models.Category, error) {
	var out []*models.Category
	for _, cat := range r.byID {
		if categoryType == "" || string(cat.Type) == categoryType {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, cat *models.Category) error {
	r.byID[cat.ID] = cat
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeCategoryRepo) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	for _, cat := range r.byID {
		if cat.Name == name && cat.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// fakeTransactionRepo is an in-memory stand-in for the transaction
// repository.
type fakeTransactionRepo struct {
	byID map[uuid.UUID]*models.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{byID: map[uuid.UUID]*models.Transaction{}}
}

func (r *fakeTransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	r.byID[tx.ID] = tx
	return nil
}

func (r *fakeTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	tx, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return tx, nil
}

func (r *fakeTransactionRepo) Update(ctx context.Context, tx *models.Transaction) error {
	r.byID[tx.ID] = tx
	return nil
}

func (r *fakeTransactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeTransactionRepo) List(ctx context.Context, q repository.TransactionQuery) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range r.byID {
		out = append(out, tx)
	}
	return out, nil
}

func (r *fakeTransactionRepo) Count(ctx context.Context, q repository.TransactionQuery) (int64, error) {
	return int64(len(r.byID)), nil
}

func (r *fakeTransactionRepo) CountByCategory(ctx context.Context, name string) (int64, error) {
	var n int64
	for _, tx := range r.byID {
		if tx.Category == name {
			n++
		}
	}
	return n, nil
}

func (r *fakeTransactionRepo) SumAmount(ctx context.Context, txType models.TransactionType, from, to time.Time) (float64, error) {
	var sum float64
	for _, tx := range r.byID {
		if tx.Type == txType && !tx.Date.Before(from) && !tx.Date.After(to) {
			sum += tx.Amount
		}
	}
	return sum, nil
}

// fakeOCR returns a canned extraction without any network calls.
type fakeOCR struct {
	result *dto.ReceiptExtraction
	err    error
}

func (f *fakeOCR) ProcessReceipt(ctx context.Context, relativePath string) (*dto.ReceiptExtraction, error) {
	return f.result, f.err
}

type testApp struct {
	app          *fiber.App
	categories   *fakeCategoryRepo
	transactions *fakeTransactionRepo
}

func newTestApp(t *testing.T, ocr *fakeOCR) *testApp {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Upload: config.UploadConfig{
			Dir:         t.TempDir(),
			MaxFileSize: 10 * 1024 * 1024,
		},
	}

	log := zap.NewNop()
	categories := newFakeCategoryRepo("식비", "교통비")
	transactions := newFakeTransactionRepo()

	files := service.NewFileService(&cfg.Upload, log)
	receiptSvc := service.NewReceiptService(files, ocr, categories, transactions, log)
	txSvc := service.NewTransactionService(transactions, categories, log)
	categorySvc := service.NewCategoryService(categories, transactions, log)
	statsSvc := service.NewStatisticsService(transactions, log)

	app := SetupRouter(cfg,
		handlers.NewReceiptHandler(receiptSvc, log),
		handlers.NewTransactionHandler(txSvc, log),
		handlers.NewCategoryHandler(categorySvc, log),
		handlers.NewStatisticsHandler(statsSvc, log),
	)

	return &testApp{app: app, categories: categories, transactions: transactions}
}

func multipartUpload(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealthEndpoint(t *testing.T) {
	ta := newTestApp(t, &fakeOCR{})

	resp, err := ta.app.Test(jsonRequest(t, http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReceiptOCREndpoint(t *testing.T) {
	store := "Cafe A"
	total := 4.5
	ta := newTestApp(t, &fakeOCR{result: &dto.ReceiptExtraction{
		Store:      &store,
		Total:      &total,
		Items:      []dto.ReceiptItem{{Name: "Latte", Price: 4.5}},
		Confidence: 0.9,
	}})

	body, contentType := multipartUpload(t, "receipt.jpg", "image/jpeg", []byte("fake jpeg bytes"))
	req, err := http.NewRequest(http.MethodPost, "/api/receipt/ocr", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result dto.ReceiptOCRResponse
	decodeBody(t, resp, &result)
	require.NotNil(t, result.Store)
	assert.Equal(t, "Cafe A", *result.Store)
	assert.Contains(t, result.ReceiptImagePath, "receipts/")
}

func TestReceiptOCREndpointRejectsExtension(t *testing.T) {
	ta := newTestApp(t, &fakeOCR{})

	body, contentType := multipartUpload(t, "notes.txt", "text/plain", []byte("hello"))
	req, err := http.NewRequest(http.MethodPost, "/api/receipt/ocr", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReceiptOCREndpointMissingFile(t *testing.T) {
	ta := newTestApp(t, &fakeOCR{})

	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/api/receipt/ocr", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReceiptOCREndpointPipelineFailure(t *testing.T) {
	ta := newTestApp(t, &fakeOCR{err: fmt.Errorf("%w: boom", service.ErrExtractionFailed)})

	body, contentType := multipartUpload(t, "receipt.jpg", "image/jpeg", []byte("fake jpeg bytes"))
	req, err := http.NewRequest(http.MethodPost, "/api/receipt/ocr", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var payload map[string]string
	decodeBody(t, resp, &payload)
	// Internal diagnostics stay in the logs.
	assert.Equal(t, "Receipt processing failed", payload["error"])
}

func TestReceiptSaveEndpoint(t *testing.T) {
	ta := newTestApp(t, &fakeOCR{})

	req := jsonRequest(t, http.MethodPost, "/api/receipt/save", dto.ReceiptSaveRequest{
		Date:     "2024-03-15",
		Store:    "Cafe A",
		Total:    4.5,
		Category: "식비",
		Type:     "expense",
	})

	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tx dto.TransactionResponse
	decodeBody(t, resp, &tx)
	assert.Equal(t, "식비", tx.Category)
	assert.Equal(t, "상호: Cafe A", tx.Memo)
	require.Len(t, ta.transactions.byID, 1)
}

func TestReceiptSaveEndpointUnknownCategory(t *testing.T) {
	ta := newTestApp(t, &fakeOCR{})

	req := jsonRequest(t, http.MethodPost, "/api/receipt/save", dto.ReceiptSaveRequest{
		Date:     "2024-03-15",
		Total:    4.5,
		Category: "없는분류",
		Type:     "expense",
	})

	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, ta.transactions.byID)
}

func TestTransactionEndpoints(t *testing.T) {
	ta := newTestApp(t, &fakeOCR{})

	// Create
	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/api/transactions", dto.TransactionCreateRequest{
		Type:     "expense",
		Date:     "2024-03-15",
		Amount:   12.5,
		Category: "식비",
		Memo:     "lunch",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.TransactionResponse
	decodeBody(t, resp, &created)

	// Get
	resp, err = ta.app.Test(jsonRequest(t, http.MethodGet, "/api/transactions/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// List
	resp, err = ta.app.Test(jsonRequest(t, http.MethodGet, "/api/transactions?type=expense", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.TransactionListResponse
	decodeBody(t, resp, &list)
	assert.Equal(t, int64(1), list.Total)

	// Update
	resp, err = ta.app.Test(jsonRequest(t, http.MethodPut, "/api/transactions/"+created.ID, map[string]interface{}{
		"amount": 20.0,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated dto.TransactionResponse
	decodeBody(t, resp, &updated)
	assert.Equal(t, 20.0, updated.Amount)

	// Delete
	resp, err = ta.app.Test(jsonRequest(t, http.MethodDelete, "/api/transactions/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Gone
	resp, err = ta.app.Test(jsonRequest(t, http.MethodGet, "/api/transactions/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTransactionEndpointsInvalidID(t *testing.T) {
	ta := newTestApp(t, &fakeOCR{})

	resp, err := ta.app.Test(jsonRequest(t, http.MethodGet, "/api/transactions/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCategoryEndpoints(t *testing.T) {
	ta := newTestApp(t, &fakeOCR{})

	// Create
	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/api/categories", dto.CategoryCreateRequest{
		Name: "여행",
		Type: "expense",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.CategoryResponse
	decodeBody(t, resp, &created)

	// Duplicate name
	resp, err = ta.app.Test(jsonRequest(t, http.MethodPost, "/api/categories", dto.CategoryCreateRequest{
		Name: "여행",
		Type: "expense",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// List
	resp, err = ta.app.Test(jsonRequest(t, http.MethodGet, "/api/categories", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.CategoryListResponse
	decodeBody(t, resp, &list)
	assert.Equal(t, 3, list.Total)

	// Delete unused category
	resp, err = ta.app.Test(jsonRequest(t, http.MethodDelete, "/api/categories/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCategoryDeleteInUse(t *testing.T) {
	ta := newTestApp(t, &fakeOCR{})

	// Reference 식비 from a transaction, then try to delete it.
	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/api/transactions", dto.TransactionCreateRequest{
		Type:     "expense",
		Date:     "2024-03-15",
		Amount:   5,
		Category: "식비",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	cat, err := ta.categories.GetByName(context.Background(), "식비")
	require.NoError(t, err)

	resp, err = ta.app.Test(jsonRequest(t, http.MethodDelete, "/api/categories/"+cat.ID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatisticsSummaryEndpoint(t *testing.T) {
	ta := newTestApp(t, &fakeOCR{})

	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/api/transactions", dto.TransactionCreateRequest{
		Type:     "expense",
		Date:     "2024-03-15",
		Amount:   12.5,
		Category: "식비",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = ta.app.Test(jsonRequest(t, http.MethodGet, "/api/statistics/summary?date=2024-03-15", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool                  `json:"success"`
		Data    dto.StatisticsSummary `json:"data"`
	}
	decodeBody(t, resp, &payload)
	assert.True(t, payload.Success)
	assert.Equal(t, 12.5, payload.Data.Today.Expense)
	assert.Equal(t, 12.5, payload.Data.ThisMonth.Expense)
}
