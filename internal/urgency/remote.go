package urgency

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Classifier triages complaint text.
type Classifier interface {
	Classify(ctx context.Context, text string) Assessment
}

// Rules is the keyword-only classifier.
type Rules struct{}

func (Rules) Classify(_ context.Context, text string) Assessment {
	return Assess(text)
}

// Remote asks an external model for department and priority and falls back to
// the keyword rules whenever it is unavailable or unhelpful.
type Remote struct {
	url        string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewRemote returns Rules when url is empty.
func NewRemote(url string, logger zerolog.Logger) Classifier {
	url = strings.TrimSpace(url)
	if url == "" {
		return Rules{}
	}
	return &Remote{
		url:        url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     logger,
	}
}

func (r *Remote) Classify(ctx context.Context, text string) Assessment {
	fallback := Assess(text)
	if strings.TrimSpace(text) == "" {
		return fallback
	}

	dept, priority, err := r.call(ctx, text)
	if err != nil {
		r.logger.Warn().Err(err).Msg("classifier unavailable, using keyword rules")
		return fallback
	}

	out := Assessment{Department: dept, Priority: priority, Source: "model"}
	if IsGeneral(out.Department) {
		out.Department = fallback.Department
	}
	if out.Priority == "" {
		out.Priority = PriorityFor(out.Department)
	}
	out.Score = ScoreFor(out.Priority)
	return out
}

func (r *Remote) call(ctx context.Context, text string) (string, Priority, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("classifier: status %d", resp.StatusCode)
	}

	var payload struct {
		Department string          `json:"department"`
		Category   json.RawMessage `json:"category"`
		Priority   string          `json:"priority"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", "", fmt.Errorf("classifier: %w", err)
	}

	dept := strings.TrimSpace(payload.Department)
	if dept == "" && len(payload.Category) > 0 {
		dept = categoryLabel(payload.Category)
	}

	var p Priority
	switch Priority(strings.ToLower(strings.TrimSpace(payload.Priority))) {
	case PriorityHigh:
		p = PriorityHigh
	case PriorityMedium:
		p = PriorityMedium
	case PriorityLow:
		p = PriorityLow
	}
	return dept, p, nil
}

// categoryLabel accepts either a numeric index or a label, quoted or not.
func categoryLabel(raw json.RawMessage) string {
	var label string
	if err := json.Unmarshal(raw, &label); err != nil {
		label = string(raw)
	}
	label = strings.TrimSpace(label)
	if idx, err := strconv.Atoi(label); err == nil {
		return DepartmentAt(idx)
	}
	return label
}
