package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/filing"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	err := root.Execute()
	return out.String(), err
}

func answersFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answers.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// =============================================================================
// COMPUTE
// =============================================================================

func TestCompute_ScenarioJSON(t *testing.T) {
	out, err := run(t, "", "compute", "--scenario", "fresh-graduate", "--format", "json")
	require.NoError(t, err)

	var rep struct {
		Result     engine.ComputeResult `json:"result"`
		Settlement filing.Settlement    `json:"settlement"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep), out)
	assert.Equal(t, "1610", rep.Result.FinalTax.String())
	assert.True(t, rep.Settlement.Refund)
	assert.Equal(t, "-390", rep.Settlement.BalanceDue.String())
}

func TestCompute_AnswersFileTable(t *testing.T) {
	// GIVEN: An answers file with numeric values
	// WHEN: It is computed with the table format
	// THEN: The summary shows tax payable and the refund

	path := answersFile(t, `{"formType": "BE", "employmentIncome": 60000, "pcbAmount": 2000}`)
	out, err := run(t, "", "compute", "--answers", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Form BE · YA 2025")
	assert.Contains(t, out, "RM 1,610.00")
	assert.Contains(t, out, "Refund:          RM 390.00")
}

func TestCompute_StdinAndPCBOverride(t *testing.T) {
	out, err := run(t, `{"employmentIncome": "60000"}`,
		"compute", "--answers", "-", "--pcb", "1000", "--format", "guide")
	require.NoError(t, err)

	assert.Contains(t, out, "LEMBAGA HASIL DALAM NEGERI MALAYSIA")
	assert.Contains(t, out, "H5")
	assert.Contains(t, out, "610.00")
}

func TestCompute_Errors(t *testing.T) {
	path := answersFile(t, `{"employmentIncome": "60000"}`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"compute"}, "--answers or --scenario is required"},
		{"both inputs", []string{"compute", "--answers", path, "--scenario", "investor"}, "not both"},
		{"unknown scenario", []string{"compute", "--scenario", "retiree"}, `unknown scenario "retiree"`},
		{"bad format", []string{"compute", "--answers", path, "--format", "pdf"}, "unknown output format"},
		{"unknown year", []string{"compute", "--answers", path, "--year", "2019"}, "YA2019"},
		{"missing file", []string{"compute", "--answers", filepath.Join(t.TempDir(), "nope.json")}, "reading answers"},
		{"bad json", []string{"compute", "--answers", answersFile(t, "[1,2]")}, "parsing answers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// =============================================================================
// SCHEDULE & QUESTIONS
// =============================================================================

func TestSchedule(t *testing.T) {
	out, err := run(t, "", "schedule", "2025")
	require.NoError(t, err)
	assert.Contains(t, out, "Tax schedule · YA 2025")
	assert.Contains(t, out, "and above")
	assert.Contains(t, out, "Non-resident rate: 30.0%")

	_, err = run(t, "", "schedule", "abc")
	assert.ErrorContains(t, err, `invalid year "abc"`)

	out, err = run(t, "", "schedule", "--validate", filepath.Join("..", "..", "..", "factory", "schedules", "ya2025.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "YA 2025 is valid")
}

func TestQuestions(t *testing.T) {
	out, err := run(t, "", "questions")
	require.NoError(t, err)
	assert.Contains(t, out, "formType")
	assert.Contains(t, out, "hasChildren")

	path := answersFile(t, `{"formType": "M", "hasChildren": "yes"}`)
	out, err = run(t, "", "questions", "--answers", path)
	require.NoError(t, err)
	assert.Contains(t, out, "employmentIncome")
	assert.NotContains(t, out, "hasChildren")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cukai version "+version)
}

func TestRoot_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cukai.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dispatcher:\n  workers: 0\n"), 0o644))

	_, err := run(t, "", "--config", path, "version")
	assert.ErrorContains(t, err, "loading config")
}
