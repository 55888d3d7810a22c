package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
)

const export = `{"data":[
 {"thread":{"conversation_id":"c-1","lead_name":"Ana","source_name":"Zillow","read":true},
  "messages":[{"id":"m-1","type":"inbound-email","timestamp":"2026-10-10T09:00:00Z","ev_score":80,"body":"Need a 3 bed"}]},
 {"thread":{"conversation_id":"c-2","lead_name":"Ben","spam":true},
  "messages":[{"id":"m-2","type":"inbound-email","timestamp":"2026-10-11T09:00:00Z"}]}
]}`

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunConversationsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o644))

	out, _, err := runCLI(t, "", "-in", path)
	require.NoError(t, err)

	var items []domain.ProcessedConversation
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "c-2", items[0].ID(), "newest first")
	assert.Equal(t, domain.StatusSpam, items[0].Status)
}

func TestRunConversationsFiltersAndSorts(t *testing.T) {
	out, _, err := runCLI(t, export, "-in", "-", "-status", "active", "-sort", "name", "-order", "asc", "-compact")
	require.NoError(t, err)

	var items []domain.ProcessedConversation
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "c-1", items[0].ID())
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1, "compact output is one line")
}

func TestRunDashboardView(t *testing.T) {
	out, _, err := runCLI(t, export, "-in", "-", "-view", "dashboard", "-window", "7")
	require.NoError(t, err)

	var view dashboardView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 2, view.Metrics.TotalConversations)
	assert.Equal(t, 1, view.Metrics.SpamConversations)
	assert.Equal(t, 7, view.Analytics.WindowDays)
	assert.Len(t, view.Analytics.ConversationTrend.Data, 7)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		in   string
		want string
	}{
		{"missing input", nil, "", "-in is required"},
		{"unknown view", []string{"-in", "-", "-view", "table"}, export, "unknown view"},
		{"unknown sort", []string{"-in", "-", "-sort", "colour"}, export, "unknown sort field"},
		{"unknown order", []string{"-in", "-", "-order", "up"}, export, "unknown sort order"},
		{"unknown status", []string{"-in", "-", "-status", "hot"}, export, "unknown status"},
		{"missing file", []string{"-in", filepath.Join(t.TempDir(), "nope.json")}, "", "reading"},
		{"broken json", []string{"-in", "-"}, "{oops", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.in, tt.args...)
			require.Error(t, err)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}
