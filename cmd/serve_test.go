package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcline/partscope/internal/catalog"
	"github.com/arcline/partscope/internal/model"
	"github.com/arcline/partscope/internal/resolver"
)

// stubSource serves canned attributes per MPN.
type stubSource struct {
	name  string
	parts map[string]*catalog.Part
}

func (s *stubSource) Name() string     { return s.name }
func (s *stubSource) Configured() bool { return s.parts != nil }

func (s *stubSource) Fetch(_ context.Context, mpn string) (*catalog.Part, error) {
	if p, ok := s.parts[mpn]; ok {
		return p, nil
	}
	return &catalog.Part{Attributes: model.NewAttributes()}, nil
}

func stubPart(pairs ...string) *catalog.Part {
	attrs := model.NewAttributes()
	for i := 0; i+1 < len(pairs); i += 2 {
		attrs.Set(pairs[i], pairs[i+1])
	}
	return &catalog.Part{Attributes: attrs}
}

func testRouter() http.Handler {
	primary := &stubSource{name: "digikey", parts: map[string]*catalog.Part{
		"4414F": stubPart("Voltage - Rated", "24VDC", "Air Flow", "100 CFM"),
	}}
	secondary := &stubSource{name: "mouser", parts: map[string]*catalog.Part{
		"OD1238-24HB": stubPart("Rated Voltage", "24 VDC", "Speed", "3100 RPM"),
	}}
	return newRouter(resolver.New(primary, secondary))
}

func TestServe_Health(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServe_Compare(t *testing.T) {
	t.Parallel()

	body := strings.NewReader(`{"mpn1":"4414F","mpn2":"OD1238-24HB"}`)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/compare", body))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ID   string `json:"id"`
		Left struct {
			MPN      string `json:"mpn"`
			Provider string `json:"provider"`
		} `json:"left"`
		Right struct {
			MPN      string `json:"mpn"`
			Provider string `json:"provider"`
		} `json:"right"`
		Rows []model.ComparisonRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "4414F", resp.Left.MPN)
	assert.Equal(t, "digikey", resp.Left.Provider)
	assert.Equal(t, "mouser", resp.Right.Provider)
	assert.NotEmpty(t, resp.Rows)

	// Canonical folding merges "Voltage - Rated" and "Rated Voltage"
	// into one display row.
	var voltageRows int
	for _, row := range resp.Rows {
		if strings.Contains(row.Name, "Voltage") {
			voltageRows++
		}
	}
	assert.Equal(t, 1, voltageRows)
}

func TestServe_CompareRawNames(t *testing.T) {
	t.Parallel()

	body := strings.NewReader(`{"mpn1":"4414F","mpn2":"OD1238-24HB","raw_names":true}`)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/compare", body))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rows []model.ComparisonRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Raw mode keeps both provider spellings as separate rows.
	var voltageRows int
	for _, row := range resp.Rows {
		if strings.Contains(row.Name, "Voltage") {
			voltageRows++
		}
	}
	assert.Equal(t, 2, voltageRows)
}

func TestServe_CompareMissingMPN(t *testing.T) {
	t.Parallel()

	body := strings.NewReader(`{"mpn1":"4414F"}`)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/compare", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_CompareBadBody(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_CompareUnresolvedSide(t *testing.T) {
	t.Parallel()

	body := strings.NewReader(`{"mpn1":"4414F","mpn2":"UNKNOWN-1"}`)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/compare", body))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Right struct {
			Provider      string `json:"provider"`
			FailureReason string `json:"failure_reason"`
		} `json:"right"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Right.Provider)
	assert.Equal(t, string(model.ReasonNotFound), resp.Right.FailureReason)
}
