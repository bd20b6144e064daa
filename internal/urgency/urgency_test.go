package urgency

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v int) *int { return &v }

func TestIsUrgent(t *testing.T) {
	cases := []struct {
		name string
		in   Subject
		want bool
	}{
		{"high score", Subject{Text: "Fan not working", Score: score(95)}, true},
		{"threshold", Subject{Text: "Fan not working", Score: score(80)}, true},
		{"below threshold", Subject{Text: "Fan not working", Score: score(79)}, false},
		{"no score", Subject{Text: "Fan not working"}, false},
		{"keyword upper", Subject{Text: "SOS coach B4"}, true},
		{"keyword emergency", Subject{Text: "Medical Emergency near gate"}, true},
		{"keyword help", Subject{Text: "please help", Score: score(10)}, true},
		{"resolved with score", Subject{Text: "sos", Score: score(100), Resolved: true}, false},
		{"out of range score", Subject{Text: "x", Score: score(900)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first := IsUrgent(tc.in)
			assert.Equal(t, tc.want, first)
			assert.Equal(t, first, IsUrgent(tc.in))
		})
	}
}

func TestLevelOf(t *testing.T) {
	assert.Equal(t, Low, LevelOf(nil))
	assert.Equal(t, Low, LevelOf(score(40)))
	assert.Equal(t, Medium, LevelOf(score(41)))
	assert.Equal(t, Medium, LevelOf(score(79)))
	assert.Equal(t, High, LevelOf(score(80)))
	assert.Equal(t, Low, LevelOf(score(-3)))
}

func TestAssess(t *testing.T) {
	a := Assess("Water leakage at platform 2")
	assert.Equal(t, "Water", a.Department)
	assert.Equal(t, PriorityMedium, a.Priority)
	assert.Equal(t, 70, a.Score)

	a = Assess("my phone was stolen, call police")
	assert.Equal(t, "Security", a.Department)
	assert.Equal(t, 95, a.Score)

	a = Assess("")
	assert.Equal(t, General, a.Department)
	assert.Equal(t, 35, a.Score)

	a = Assess("Refund problem with my PNR")
	assert.Equal(t, "Ticketing", a.Department)
	assert.Equal(t, 35, a.Score)
	assert.False(t, IsUrgent(Subject{Text: "Refund problem with my PNR", Score: &a.Score}))
}

func TestInferDepartmentMatchesWords(t *testing.T) {
	cases := map[string]string{
		"Left my stapler at this place":      General,
		"My bag was robbed near gate 3":      "Security",
		"Someone is harassing women in S2":   "Security",
		"The AC is not cooling":              "Coach",
		"Accident on the foot overbridge":    General,
		"Tap on platform 4 has no water":     "Water",
		"Passenger injured while boarding":   "Medical",
		"Leakage from the roof of coach B1":  "Coach",
		"Fans are off in the waiting room":   "Electrical",
	}
	for text, want := range cases {
		assert.Equal(t, want, InferDepartment(text), text)
	}
}

func TestRemoteUsesModelAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Fan not working in coach S3", body["text"])
		_, _ = w.Write([]byte(`{"category": 6, "priority": "HIGH"}`))
	}))
	defer srv.Close()

	c := NewRemote(srv.URL, zerolog.Nop())
	a := c.Classify(context.Background(), "Fan not working in coach S3")
	assert.Equal(t, "Medical", a.Department)
	assert.Equal(t, PriorityHigh, a.Priority)
	assert.Equal(t, 95, a.Score)
	assert.Equal(t, "model", a.Source)
}

func TestRemoteFallsBackToRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := NewRemote(srv.URL, zerolog.Nop()).Classify(context.Background(), "dirty toilet")
	assert.Equal(t, "Cleanliness", a.Department)
	assert.Equal(t, "rules", a.Source)

	_, ok := NewRemote("  ", zerolog.Nop()).(Rules)
	assert.True(t, ok)
}

func TestRemoteGeneralAnswerKeepsRuleDepartment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"department": "General"}`))
	}))
	defer srv.Close()

	a := NewRemote(srv.URL, zerolog.Nop()).Classify(context.Background(), "refund for PNR 123")
	assert.Equal(t, "Ticketing", a.Department)
	assert.Equal(t, PriorityLow, a.Priority)
}
