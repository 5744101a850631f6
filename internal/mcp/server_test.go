package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/abstractor/internal/mcp"
)

const opNote = `OPERATIVE REPORT
PREOPERATIVE DIAGNOSIS:
Right breast cancer
PROCEDURE:
Right mastectomy with immediate tissue expander placement
`

const consultNote = `Past Medical History:
Patient denies diabetes. History of hypertension.
`

func connectInMemory(t *testing.T, ctx context.Context) *sdkmcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(nil, zap.NewNop())

	t1, t2 := sdkmcp.NewInMemoryTransports()
	_, err := srv.MCPServer.Connect(ctx, t1, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError, "tool %s returned an error: %+v", name, res.Content)

	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			out := make(map[string]any)
			require.NoError(t, json.Unmarshal([]byte(tc.Text), &out), tc.Text)
			return out
		}
	}
	t.Fatalf("no text content in %s result", name)
	return nil
}

func TestServer_ToolDiscovery(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx)

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"sectionize_note", "extract_note", "abstract_patient"}, names)
}

func TestServer_SectionizeNote(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx)

	out := callTool(t, ctx, session, "sectionize_note", map[string]any{"note_id": "n1", "text": opNote})
	assert.Equal(t, "operative", out["note_type"])

	sections := out["sections"].([]any)
	require.Len(t, sections, 2)
	assert.Equal(t, "PREOPERATIVE DIAGNOSIS", sections[0].(map[string]any)["name"])
}

func TestServer_ExtractNote(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx)

	out := callTool(t, ctx, session, "extract_note", map[string]any{"note_id": "c1", "note_type": "Clinic Note", "text": consultNote})

	found := map[string]string{}
	for _, e := range out["evidence"].([]any) {
		m := e.(map[string]any)
		found[m["field"].(string)] = m["value"].(string)
	}
	assert.Equal(t, "false", found["DiabetesMellitus"])
	assert.Equal(t, "true", found["Hypertension"])
}

func TestServer_AbstractPatient(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx)

	out := callTool(t, ctx, session, "abstract_patient", map[string]any{
		"patient_id":       "P1",
		"include_evidence": true,
		"notes": []map[string]any{
			{"note_id": "c1", "note_type": "Clinic Note", "text": consultNote},
			{"note_id": "op1", "note_type": "op_note", "text": opNote},
		},
	})
	assert.Equal(t, "P1", out["patient_id"])
	assert.EqualValues(t, 2, out["notes"])
	assert.NotEmpty(t, out["evidence"])

	fields := map[string]string{}
	for _, f := range out["fields"].([]any) {
		m := f.(map[string]any)
		fields[m["field"].(string)] = m["value"].(string)
	}
	assert.Equal(t, "true", fields["Mastectomy_Performed"])
	assert.Equal(t, "false", fields["DiabetesMellitus"])
}

func TestServer_Errors(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx)

	for _, tc := range []struct {
		tool string
		args map[string]any
	}{
		{"sectionize_note", map[string]any{"text": "  "}},
		{"extract_note", map[string]any{"text": ""}},
		{"abstract_patient", map[string]any{"patient_id": "", "notes": []any{}}},
		{"abstract_patient", map[string]any{"patient_id": "P1", "notes": []map[string]any{{"text": ""}}}},
	} {
		res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: tc.tool, Arguments: tc.args})
		if err != nil {
			continue
		}
		assert.True(t, res.IsError, "%s should fail for %v", tc.tool, tc.args)
	}
}
