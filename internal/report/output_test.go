package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dealercraft/sbmigrate"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "issues", want: FormatText},
		{in: "summary", want: FormatSummary},
		{in: "json", want: FormatJSON},
		{in: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestWriteAuditJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteAudit(&buf, testViolations(), sbmigrate.ScanStats{FilesScanned: 1}, FormatJSON, Options{})
	require.NoError(t, err)

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Equal(t, 2, out.Summary.TotalViolations)
}

func TestWriteAuditSummary(t *testing.T) {
	var buf bytes.Buffer
	err := WriteAudit(&buf, testViolations(), sbmigrate.ScanStats{FilesScanned: 1}, FormatSummary, Options{})
	require.NoError(t, err)

	out := buf.String()
	require.NotContains(t, out, "css/style.scss:3:5:")
	require.Contains(t, out, "2 violations in 1 file:")
}

func TestWriteAuditText(t *testing.T) {
	var buf bytes.Buffer
	err := WriteAudit(&buf, testViolations(), sbmigrate.ScanStats{FilesScanned: 1}, FormatText, Options{})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "css/style.scss:3:5:")
	require.Contains(t, out, "css/style.scss:12:1:")
	require.Contains(t, out, "2 violations in 1 file:")
}
