package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/spektr-org/skillscope/engine"
	"github.com/spektr-org/skillscope/schema"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const assessments = `Collaborator,Department,Competency domain,Competency subdomain,Competency,Self-assessment,Final assessment,Required level
Alice,Maintenance,Railway technical competencies,Infrastructure,Signalling,2,3,3
Bob,Maintenance,Railway technical competencies,Infrastructure,Signalling,3,4,3
Chloe,Operations,Railway technical competencies,Infrastructure,Signalling,3,3,
David,Operations,Railway technical competencies,Infrastructure,Catenary,1,2,3
Alice,Maintenance,Linguistic competencies,Languages,English,3,5,4
`

func newTestServer(t *testing.T, maxDatasets int) *Server {
	t.Helper()
	s, err := NewServer(&ServerConfig{
		Host:           "localhost",
		Port:           8080,
		MaxDatasets:    maxDatasets,
		MaxUploadBytes: 1 << 20,
		Schema:         schema.Default(),
	})
	require.NoError(t, err)
	return s
}

func uploadRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/datasets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func upload(t *testing.T, s *Server) string {
	t.Helper()
	rr := do(s, uploadRequest(t, "file", "assessments.csv", assessments))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.ID
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(rr.Code), body["status"])
	return body
}

// ============================================================================
// CONFIG
// ============================================================================

func TestServerConfig_Validate(t *testing.T) {
	valid := ServerConfig{Host: "localhost", Port: 8080, MaxDatasets: 1, MaxUploadBytes: 1, Schema: schema.Default()}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"empty host", func(c *ServerConfig) { c.Host = "" }},
		{"port zero", func(c *ServerConfig) { c.Port = 0 }},
		{"no datasets", func(c *ServerConfig) { c.MaxDatasets = 0 }},
		{"no upload", func(c *ServerConfig) { c.MaxUploadBytes = 0 }},
		{"empty schema", func(c *ServerConfig) { c.Schema = schema.Config{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())

			_, err := NewServer(&cfg)
			assert.ErrorContains(t, err, "invalid server configuration")
		})
	}
}

// ============================================================================
// UPLOAD
// ============================================================================

func TestUpload(t *testing.T) {
	s := newTestServer(t, 4)

	rr := do(s, uploadRequest(t, "file", "assessments.csv", assessments))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "assessments.csv", resp.Filename)
	assert.Equal(t, 5, resp.Records)

	rr = do(s, httptest.NewRequest("GET", "/api/datasets/"+resp.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"records":5`)

	rr = do(s, httptest.NewRequest("GET", "/api/datasets", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), resp.ID)
}

func TestUpload_Errors(t *testing.T) {
	s := newTestServer(t, 4)

	t.Run("missing columns", func(t *testing.T) {
		rr := do(s, uploadRequest(t, "file", "partial.csv", "Collaborator,Department\nAlice,Maintenance\n"))
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		body := decodeError(t, rr)
		assert.Contains(t, body["error"], "missing required column(s): Competency domain")
	})

	t.Run("bad level", func(t *testing.T) {
		content := strings.Replace(assessments, "Alice,Maintenance,Railway technical competencies,Infrastructure,Signalling,2", "Alice,Maintenance,Railway technical competencies,Infrastructure,Signalling,two", 1)
		rr := do(s, uploadRequest(t, "file", "bad.csv", content))
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		body := decodeError(t, rr)
		assert.Contains(t, body["error"], `row 2, column "Self-assessment"`)
	})

	t.Run("not a workbook", func(t *testing.T) {
		rr := do(s, uploadRequest(t, "file", "assessments.xlsx", "plain text"))
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		decodeError(t, rr)
	})

	t.Run("wrong field", func(t *testing.T) {
		rr := do(s, uploadRequest(t, "upload", "assessments.csv", assessments))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		decodeError(t, rr)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/datasets", strings.NewReader(assessments))
		req.Header.Set("Content-Type", "text/csv")
		rr := do(s, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	assert.Equal(t, 0, s.store.Len(), "failed uploads store nothing")
}

func TestUpload_TooLarge(t *testing.T) {
	s, err := NewServer(&ServerConfig{
		Host: "localhost", Port: 8080, MaxDatasets: 1, MaxUploadBytes: 64, Schema: schema.Default(),
	})
	require.NoError(t, err)

	rr := do(s, uploadRequest(t, "file", "assessments.csv", assessments))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	decodeError(t, rr)
}

func TestUpload_EvictsOldest(t *testing.T) {
	s := newTestServer(t, 2)

	first := upload(t, s)
	second := upload(t, s)
	third := upload(t, s)

	assert.Equal(t, 2, s.store.Len())
	assert.Equal(t, http.StatusNotFound, do(s, httptest.NewRequest("GET", "/api/datasets/"+first, nil)).Code)
	assert.Equal(t, http.StatusOK, do(s, httptest.NewRequest("GET", "/api/datasets/"+second, nil)).Code)
	assert.Equal(t, http.StatusOK, do(s, httptest.NewRequest("GET", "/api/datasets/"+third, nil)).Code)
}

func TestDeleteDataset(t *testing.T) {
	s := newTestServer(t, 4)
	id := upload(t, s)

	rr := do(s, httptest.NewRequest("DELETE", "/api/datasets/"+id, nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(s, httptest.NewRequest("DELETE", "/api/datasets/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	decodeError(t, rr)
}

// ============================================================================
// VIEWS
// ============================================================================

func TestOptions(t *testing.T) {
	s := newTestServer(t, 4)
	id := upload(t, s)

	rr := do(s, httptest.NewRequest("GET", "/api/datasets/"+id+"/options?domain=Railway+technical+competencies", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var catalog engine.Catalog
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &catalog))
	assert.Equal(t, []string{"Railway technical competencies", "Linguistic competencies"}, catalog.Domains)
	assert.Equal(t, []string{"Signalling", "Catenary"}, catalog.Competencies)
	assert.Equal(t, []string{"Maintenance", "Operations"}, catalog.Departments)
	require.NotNil(t, catalog.Context)
	assert.Equal(t, "Infrastructure", catalog.Context.Subdomain)
}

func TestView_JSON(t *testing.T) {
	s := newTestServer(t, 4)
	id := upload(t, s)

	rr := do(s, httptest.NewRequest("GET", "/api/datasets/"+id+"/views/final?competency=Signalling", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var result engine.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, engine.ViewFinal, result.View)
	assert.False(t, result.Empty)
	require.NotNil(t, result.TableData)
	assert.Equal(t, [][]string{
		{"Confirmed", "2", "Alice, Chloe"},
		{"Expert", "1", "Bob"},
	}, result.TableData.Rows)
	require.NotNil(t, result.ChartConfig)
}

func TestView_EmptySelection(t *testing.T) {
	s := newTestServer(t, 4)
	id := upload(t, s)

	rr := do(s, httptest.NewRequest("GET", "/api/datasets/"+id+"/views/department?department=Nowhere", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var result engine.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.True(t, result.Empty)
	assert.Empty(t, result.TableData.Rows)
}

func TestView_CSV(t *testing.T) {
	s := newTestServer(t, 4)
	id := upload(t, s)

	rr := do(s, httptest.NewRequest("GET", "/api/datasets/"+id+"/views/underqualified.csv", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="underqualified_data.csv"`, rr.Header().Get("Content-Disposition"))

	rows, err := csv.NewReader(rr.Body).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Collaborator", "Competencies"},
		{"David", "Catenary"},
	}, rows)
}

func TestView_Errors(t *testing.T) {
	s := newTestServer(t, 4)
	id := upload(t, s)

	rr := do(s, httptest.NewRequest("GET", "/api/datasets/"+id+"/views/bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	decodeError(t, rr)

	rr = do(s, httptest.NewRequest("GET", "/api/datasets/"+id+"/views/bogus.csv", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(s, httptest.NewRequest("GET", "/api/datasets/missing/views/self", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	decodeError(t, rr)
}

func TestScalesAndViews(t *testing.T) {
	s := newTestServer(t, 1)

	rr := do(s, httptest.NewRequest("GET", "/api/scales", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var scales ScalesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scales))
	assert.Equal(t, engine.DefaultLinguisticDomain, scales.LinguisticDomain)
	require.Len(t, scales.Scales, 2)
	assert.Equal(t, "Mastery", scales.Scales[0].Entries[5].Label)

	rr = do(s, httptest.NewRequest("GET", "/api/views", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var views []ViewInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &views))
	assert.Len(t, views, len(engine.ViewKinds))
	assert.Equal(t, "alerts_data.csv", views[4].Filename)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, 1)

	rr := do(s, httptest.NewRequest("GET", "/api/scales", nil))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	for _, path := range []string{"/api/datasets", "/api/datasets/some-id", "/api/datasets/some-id/views/final.csv"} {
		req := httptest.NewRequest("OPTIONS", path, nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "DELETE")

		rr := do(s, req)
		assert.Equal(t, http.StatusNoContent, rr.Code, path)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"), path)
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "DELETE", path)
	}
}

// ============================================================================
// LIFECYCLE
// ============================================================================

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, 1)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	transport := &http.Transport{DisableKeepAlives: true}
	client := &http.Client{Transport: transport}
	resp, err := client.Get("http://" + ln.Addr().String() + "/api/scales")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	transport.CloseIdleConnections()

	cancel()
	assert.NoError(t, <-done)
}
