package config

import (
	"testing"

	"github.com/Veraticus/spice-categorizer/internal/sheets"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearSheetsEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
		"GOOGLE_SHEETS_SPREADSHEET_NAME",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadSheetsConfig(t *testing.T) {
	tests := []struct {
		setup   func(t *testing.T, v *viper.Viper)
		check   func(t *testing.T, cfg *sheets.Config)
		name    string
		wantErr bool
	}{
		{
			name:    "nothing configured",
			setup:   func(*testing.T, *viper.Viper) {},
			wantErr: true,
		},
		{
			name: "oauth from viper",
			setup: func(_ *testing.T, v *viper.Viper) {
				v.Set("sheets.client_id", "id")
				v.Set("sheets.client_secret", "secret")
				v.Set("sheets.refresh_token", "refresh")
				v.Set("sheets.spreadsheet_name", "Q1 Expenses")
			},
			check: func(t *testing.T, cfg *sheets.Config) {
				t.Helper()
				assert.Equal(t, "id", cfg.ClientID)
				assert.Equal(t, "refresh", cfg.RefreshToken)
				assert.Equal(t, "Q1 Expenses", cfg.SpreadsheetName)
			},
		},
		{
			name: "service account from environment",
			setup: func(t *testing.T, _ *viper.Viper) {
				t.Helper()
				t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/tmp/sa.json")
				t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "sheet-123")
			},
			check: func(t *testing.T, cfg *sheets.Config) {
				t.Helper()
				assert.Equal(t, "/tmp/sa.json", cfg.ServiceAccountPath)
				assert.Equal(t, "sheet-123", cfg.SpreadsheetID)
				assert.Equal(t, sheets.DefaultSpreadsheetName, cfg.SpreadsheetName)
			},
		},
		{
			name: "both methods configured",
			setup: func(_ *testing.T, v *viper.Viper) {
				v.Set("sheets.service_account_path", "/tmp/sa.json")
				v.Set("sheets.client_id", "id")
				v.Set("sheets.client_secret", "secret")
				v.Set("sheets.refresh_token", "refresh")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSheetsEnv(t)
			v := viper.New()
			tt.setup(t, v)

			cfg, err := LoadSheetsConfig(v)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
