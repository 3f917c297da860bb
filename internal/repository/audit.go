package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"motoprice/internal/model"
)

// AuditLog mirrors the submission and anomaly-check logs to append-only CSV
// files, one row per event. The header is written only when a file is first
// created; existing files are never rewritten. It is safe for concurrent use.
type AuditLog struct {
	mu  sync.Mutex
	dir string
}

// NewAuditLog creates the audit directory if needed.
func NewAuditLog(dir string) (*AuditLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("audit: create output dir: %w", err)
	}
	return &AuditLog{dir: dir}, nil
}

var submissionHeader = []string{
	"listing_id", "brand", "model_line", "body_type", "displacement_class",
	"condition", "origin", "odometer_km", "registration_year", "asking_price",
	"predicted_price", "anomaly_flag", "status", "submitted_at",
}

var anomalyCheckHeader = []string{
	"checked_at", "vehicle", "asking_price", "predicted_price", "conclusion",
}

// AppendSubmission appends one submitted listing to submissions.csv.
func (a *AuditLog) AppendSubmission(l *model.Listing) error {
	flag := "0"
	if l.AnomalyFlag {
		flag = "1"
	}
	row := []string{
		strconv.FormatInt(l.ID, 10),
		l.Brand,
		l.ModelLine,
		l.BodyType,
		l.DisplacementClass,
		l.Condition,
		l.Origin,
		strconv.FormatInt(l.OdometerKm, 10),
		strconv.Itoa(l.RegistrationYear),
		strconv.FormatFloat(l.AskingPrice, 'f', -1, 64),
		strconv.FormatFloat(l.PredictedPrice, 'f', -1, 64),
		flag,
		strconv.Itoa(int(l.Status)),
		l.SubmittedAt.Format(time.RFC3339),
	}
	return a.appendRow("submissions.csv", submissionHeader, row)
}

// AppendAnomalyCheck appends one saved check to anomaly_checks.csv.
func (a *AuditLog) AppendAnomalyCheck(c *model.AnomalyCheck) error {
	row := []string{
		c.CheckedAt.Format(time.RFC3339),
		c.Vehicle,
		strconv.FormatFloat(c.AskingPrice, 'f', -1, 64),
		strconv.FormatFloat(c.PredictedPrice, 'f', -1, 64),
		c.Conclusion,
	}
	return a.appendRow("anomaly_checks.csv", anomalyCheckHeader, row)
}

func (a *AuditLog) appendRow(name string, header, row []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	path := filepath.Join(a.dir, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("audit: open %q: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("audit: stat %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if stat.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("audit: write header: %w", err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("audit: write row: %w", err)
	}
	w.Flush()
	return w.Error()
}
