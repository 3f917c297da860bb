package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"motoprice/internal/metrics"
	"motoprice/internal/pricing"
	"motoprice/internal/service"
)

type fixedModel struct {
	score float64
}

func (m fixedModel) Predict(rec pricing.FeatureRecord) (float64, error) {
	return m.score, nil
}

func newPricingRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	predictor := pricing.NewPredictor(fixedModel{score: 10_000_000}, nil, false)
	scorer := pricing.NewScorer(0, 0)
	svc := service.NewPricingService(predictor, scorer, nil, nil, metrics.NewRegistry())
	h := NewPricingHandler(svc, 50)

	router := gin.New()
	router.POST("/api/v1/predict", h.Predict)
	router.POST("/api/v1/anomaly", h.CheckAnomaly)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPredictRejectsImplausibleAttributes(t *testing.T) {
	router := newPricingRouter()

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			"valid attributes",
			`{"brand":"Honda","model_line":"Vision","registration_year":2021,"odometer_km":12000}`,
			http.StatusOK,
		},
		{
			"negative odometer",
			`{"brand":"Honda","model_line":"Vision","odometer_km":-500}`,
			http.StatusBadRequest,
		},
		{
			"implausible year",
			`{"brand":"Honda","model_line":"Vision","registration_year":1800}`,
			http.StatusBadRequest,
		},
		{
			"missing year placeholder accepted",
			`{"brand":"Honda","model_line":"Vision"}`,
			http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/api/v1/predict", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestCheckAnomalyRejectsImplausibleAttributes(t *testing.T) {
	router := newPricingRouter()

	w := postJSON(t, router, "/api/v1/anomaly",
		`{"brand":"Yamaha","model_line":"Exciter","odometer_km":-1,"asking_price":12000000}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (body: %s)", w.Code, w.Body.String())
	}

	w = postJSON(t, router, "/api/v1/anomaly",
		`{"brand":"Yamaha","model_line":"Exciter","registration_year":2020,"asking_price":12000000}`)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
}
