package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/fractal/internal/export"
	"github.com/san-kum/fractal/internal/lsystem"
)

func serve(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", target, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	handler := NewHandler(lsystem.NewCatalog(), nil, nil)
	rr := serve(t, handler, "/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestListFractals(t *testing.T) {
	handler := NewHandler(lsystem.NewCatalog(), nil, nil)
	rr := serve(t, handler, "/fractals")

	require.Equal(t, http.StatusOK, rr.Code)
	var all []export.ExportData
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	require.Len(t, all, 12)
	assert.Equal(t, "barnsley-fern", all[0].Slug)
	assert.Equal(t, 12, all[11].ID)
}

func TestGetFractalBySlugAndID(t *testing.T) {
	handler := NewHandler(lsystem.NewCatalog(), nil, nil)

	for _, ref := range []string{"hilbert-curve", "7"} {
		rr := serve(t, handler, "/fractals/"+ref)
		require.Equal(t, http.StatusOK, rr.Code, ref)
		var data export.ExportData
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &data))
		assert.Equal(t, 7, data.ID)
	}

	rr := serve(t, handler, "/fractals/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRenderPNG(t *testing.T) {
	handler := NewHandler(lsystem.NewCatalog(), nil, nil)
	rr := serve(t, handler, "/fractals/koch-island/png?n=2&w=120&h=90&from=ff0000&to=0000ff")

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 90, img.Bounds().Dy())
}

func TestRenderDefaultsFitLowCeilings(t *testing.T) {
	handler := NewHandler(lsystem.NewCatalog(), nil, nil)
	for _, ref := range []string{"segment-32", "koch-island", "frec-fractal"} {
		rr := serve(t, handler, "/fractals/"+ref+"/png?w=60&h=40")
		assert.Equal(t, http.StatusOK, rr.Code, "%s: %s", ref, rr.Body.String())
	}
}

func TestRenderSVG(t *testing.T) {
	handler := NewHandler(lsystem.NewCatalog(), nil, nil)
	rr := serve(t, handler, "/fractals/12/svg?n=1&w=300&h=200")

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "<svg")
	assert.Contains(t, rr.Body.String(), "linearGradient")
}

func TestRenderErrors(t *testing.T) {
	handler := NewHandler(lsystem.NewCatalog(), nil, nil)

	tests := []struct {
		target string
		code   int
	}{
		{"/fractals/99/png", http.StatusNotFound},
		{"/fractals/3/png?n=4", http.StatusBadRequest},
		{"/fractals/3/png?n=abc", http.StatusBadRequest},
		{"/fractals/3/png?from=zzz", http.StatusBadRequest},
		{"/fractals/3/png?w=0", http.StatusBadRequest},
		{"/fractals/3/svg?h=100000", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rr := serve(t, handler, tt.target)
		assert.Equal(t, tt.code, rr.Code, tt.target)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), tt.target)
		assert.NotEmpty(t, resp["error"], tt.target)
	}
}

func TestMetricsCountRenders(t *testing.T) {
	handler := NewHandler(lsystem.NewCatalog(), nil, nil)
	serve(t, handler, "/fractals/12/svg?n=1&w=100&h=100")
	serve(t, handler, "/fractals/12/svg?n=99")

	rr := serve(t, handler, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `fractal_renders_total{format="svg",fractal="koch-snowflake",status="ok"} 1`)
	assert.Contains(t, body, `fractal_renders_total{format="svg",fractal="koch-snowflake",status="error"} 1`)
}
