package regression

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"motoprice/internal/pricing"
)

// HTTPModel calls an external model-serving endpoint instead of a local
// artifact. Inference is a single bounded request; the client timeout is the
// only cancellation mechanism, matching the rest of the core's no-timeout
// semantics.
type HTTPModel struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPModel creates a client for a serving endpoint exposing POST /predict.
func NewHTTPModel(baseURL string, timeout time.Duration) *HTTPModel {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPModel{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type servePredictRequest struct {
	Fields []string       `json:"fields"`
	Record map[string]any `json:"record"`
}

type servePredictResponse struct {
	Prediction float64 `json:"prediction"`
	Error      string  `json:"error,omitempty"`
}

// Predict sends the normalized record to the serving endpoint and returns the
// raw model score. Non-2xx responses and serving-side errors surface as model
// rejections.
func (m *HTTPModel) Predict(rec pricing.FeatureRecord) (float64, error) {
	body, err := json.Marshal(servePredictRequest{
		Fields: rec.Fields(),
		Record: rec.Raw(),
	})
	if err != nil {
		return 0, fmt.Errorf("marshal predict request: %w", err)
	}

	resp, err := m.httpClient.Post(m.baseURL+"/predict", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("model server request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read model server response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("model server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed servePredictResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, fmt.Errorf("parse model server response: %w", err)
	}
	if parsed.Error != "" {
		return 0, fmt.Errorf("model server rejected record: %s", parsed.Error)
	}
	if math.IsNaN(parsed.Prediction) || math.IsInf(parsed.Prediction, 0) {
		return 0, fmt.Errorf("model server returned a non-finite prediction")
	}
	return parsed.Prediction, nil
}

var _ pricing.RegressionModel = (*HTTPModel)(nil)
