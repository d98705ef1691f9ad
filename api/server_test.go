package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	return NewServer(gin.TestMode)
}

func postAnalyze(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func analyzeBody(rows []map[string]any) string {
	raw, _ := json.Marshal(map[string]any{"observations": rows})
	return string(raw)
}

// rows covering all four depression/chronic cells, with lowercase
// spellings the handler must normalize.
func validRows() []map[string]any {
	rows := make([]map[string]any, 0, 10)
	chronics := []string{"yes", "yes", "no", "no", "yes", "yes", "yes", "no", "no", "no"}
	for i := 0; i < 10; i++ {
		dep := "yes"
		if i >= 5 {
			dep = "no"
		}
		rows = append(rows, map[string]any{
			"visits":     i,
			"depression": dep,
			"chronic":    chronics[i],
		})
	}
	return rows
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAnalyzeEndpoint(t *testing.T) {
	rec := postAnalyze(t, newTestServer(), analyzeBody(validRows()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		RunID      string `json:"run_id"`
		DataFrames struct {
			DepressionData  []json.RawMessage `json:"depressionData"`
			ChronicData     []json.RawMessage `json:"chronicData"`
			InteractionData []json.RawMessage `json:"interactionData"`
		} `json:"dataFrames"`
		Stats struct {
			AllChronic []json.RawMessage `json:"allChronic"`
		} `json:"stats"`
		Plots map[string]struct {
			Sheet string `json:"sheet"`
		} `json:"plots"`
		Tests struct {
			Pairwise []struct {
				Test string `json:"test"`
			} `json:"pairwise"`
		} `json:"tests"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.RunID)
	assert.Len(t, resp.DataFrames.DepressionData, 10)
	assert.Len(t, resp.DataFrames.InteractionData, 10)
	assert.Len(t, resp.Stats.AllChronic, 12)
	assert.Len(t, resp.Plots, 14)
	require.Len(t, resp.Tests.Pairwise, 3)
	assert.Equal(t, "W1", resp.Tests.Pairwise[0].Test)
}

func TestAnalyzeNormalizesSpellings(t *testing.T) {
	rows := validRows()
	// numeric and single-letter spellings decode like the file loaders
	rows[0]["depression"] = "1"
	rows[1]["depression"] = "Y"
	rows[5]["depression"] = "0"
	rows[6]["depression"] = "n"

	rec := postAnalyze(t, newTestServer(), analyzeBody(rows))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAnalyzeBadRequest(t *testing.T) {
	rec := postAnalyze(t, newTestServer(), `{"rows": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestAnalyzeDegenerateData(t *testing.T) {
	rows := validRows()
	for _, r := range rows {
		delete(r, "chronic")
	}

	rec := postAnalyze(t, newTestServer(), analyzeBody(rows))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "degenerate") ||
		strings.Contains(rec.Body.String(), "sample"), rec.Body.String())
}
