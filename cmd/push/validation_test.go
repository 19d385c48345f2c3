package push

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePushArgs(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(report, []byte("{}"), 0o644))

	tests := []struct {
		name    string
		options RunOptionsPush
		args    []string
		wantErr string
	}{
		{
			name:    "valid",
			options: RunOptionsPush{APIURL: "http://localhost:3000", InputFile: report},
		},
		{
			name:    "positional arguments rejected",
			options: RunOptionsPush{APIURL: "http://localhost:3000", InputFile: report},
			args:    []string{"extra"},
			wantErr: "no positional arguments",
		},
		{
			name:    "missing api url",
			options: RunOptionsPush{InputFile: report},
			wantErr: "'api-url' flag must be specified",
		},
		{
			name:    "relative api url",
			options: RunOptionsPush{APIURL: "localhost:3000/api", InputFile: report},
			wantErr: "valid absolute URL",
		},
		{
			name:    "missing input file flag",
			options: RunOptionsPush{APIURL: "http://localhost:3000"},
			wantErr: "'input-file' flag must be specified",
		},
		{
			name:    "input file does not exist",
			options: RunOptionsPush{APIURL: "http://localhost:3000", InputFile: filepath.Join(dir, "missing.json")},
			wantErr: "'input-file' flag is invalid",
		},
		{
			name:    "input file is a directory",
			options: RunOptionsPush{APIURL: "http://localhost:3000", InputFile: dir},
			wantErr: "'input-file' flag is invalid",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePushArgs(&tt.options, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
