package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvclean/internal/core"
	"github.com/JonMunkholm/csvclean/internal/translate"
)

const contactsCSV = "Email,First Name,Phone\n" +
	"john@gmial.com,  john3 d0e!! ,(555) 123-4567\n" +
	"john@gmial.com,  john3 d0e!! ,(555) 123-4567\n"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestClean_WritesDefaultOutput(t *testing.T) {
	input := writeFile(t, "contacts.csv", contactsCSV)

	stdout, _, err := run(t, "clean", input)
	require.NoError(t, err)

	dest := filepath.Join(filepath.Dir(input), "contacts_clean.csv")
	assert.Contains(t, stdout, dest)
	assert.Contains(t, stdout, "2 rows in, 1 rows out")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "email,firstname,phone\njohn@gmail.com,John De,5551234567\n", string(data))
}

func TestClean_ReportAndFlags(t *testing.T) {
	input := writeFile(t, "contacts.csv", contactsCSV)
	dir := filepath.Dir(input)
	out := filepath.Join(dir, "out.json")
	reportPath := filepath.Join(dir, "report.json")

	_, _, err := run(t, "clean", input,
		"-o", out, "-f", "json",
		"--report", reportPath,
		"--select", "email,phone",
		"--name-column", "",
		"--no-dedupe",
	)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var rows struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(data, &rows))
	assert.Equal(t, []string{"email", "phone"}, rows.Columns)
	assert.Len(t, rows.Rows, 2)

	data, err = os.ReadFile(reportPath)
	require.NoError(t, err)
	var rec core.RunRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "cli", rec.Source)
	assert.Equal(t, 2, rec.Report.RowsOut)
}

func TestClean_Errors(t *testing.T) {
	input := writeFile(t, "contacts.csv", contactsCSV)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad format", []string{"clean", input, "-f", "parquet"}, "unsupported format"},
		{"bad separator", []string{"clean", input, "--sep", ";;"}, "single character"},
		{"unknown profile", []string{"clean", input, "--profile", "nope"}, "unknown profile"},
		{"missing file", []string{"clean", filepath.Join(t.TempDir(), "missing.csv")}, "missing.csv"},
		{"no args", []string{"clean"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestChunkCombine(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,name\n")
	for i := 1; i <= 22; i++ {
		b.WriteString("1,x\n")
	}
	original := b.String()
	input := writeFile(t, "data.csv", original)

	stdout, _, err := run(t, "chunk", input)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, filepath.Join(filepath.Dir(input), "data_0.csv"), lines[0])

	require.NoError(t, os.Remove(input))
	_, _, err = run(t, "combine", input)
	require.NoError(t, err)

	data, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestCombine_MissingChunk(t *testing.T) {
	input := filepath.Join(t.TempDir(), "data.csv")
	_, _, err := run(t, "combine", input)
	require.Error(t, err)
}

func TestTranslateHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Q string `json:"q"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		names := map[string]string{"Nom": "Name", "Courriel": "Email"}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"translatedText": names[req.Q]})
	}))
	defer srv.Close()

	input := writeFile(t, "fr.csv", "Nom,Courriel\nAnne,anne@example.com\n")
	dest := filepath.Join(filepath.Dir(input), "en.csv")

	stdout, _, err := run(t, "translate-headers", input, dest, "--url", srv.URL, "--rps", "100")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[Name Email]")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "Name,Email\nAnne,anne@example.com\n", string(data))
}

func TestTranslateHeaders_UnsupportedFileType(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, "translate-headers", filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out"), "--file-type", "pdf")
	require.ErrorIs(t, err, translate.ErrUnsupportedFileType)
}

func TestProfiles(t *testing.T) {
	stdout, _, err := run(t, "profiles")
	require.NoError(t, err)
	assert.Contains(t, stdout, "KEY")
	assert.Contains(t, stdout, "default")
	assert.Contains(t, stdout, "sfdc_contacts")
}
