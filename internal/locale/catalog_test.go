package locale

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "es", "fr"}, c.Languages())
	assert.Equal(t, "Portal del Doctor", c.Strings("es").Doctor["header_subtitle"])
	assert.Equal(t, "Erreur:", c.Strings("fr").Patient["error_prefix"])
	assert.Equal(t, "Doctor Portal", c.Strings("de").Doctor["header_subtitle"], "unknown language falls back to English")
	assert.Equal(t, "en", c.Strings("").Language)
}

func TestParse_Rejects(t *testing.T) {
	full, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(m map[string]*Strings)
		wantErr string
	}{
		{
			name:    "missing key",
			mutate:  func(m map[string]*Strings) { delete(m["es"].Patient, "generate") },
			wantErr: `locale "es": patient.generate is not defined`,
		},
		{
			name:    "missing language",
			mutate:  func(m map[string]*Strings) { delete(m, "fr") },
			wantErr: `locale "fr" is missing`,
		},
		{
			name:    "unknown language",
			mutate:  func(m map[string]*Strings) { m["de"] = m["en"] },
			wantErr: `unsupported locale "de"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := make(map[string]*Strings)
			for _, lang := range full.Languages() {
				s := *full.Strings(lang)
				s.Doctor = copyMap(s.Doctor)
				s.Patient = copyMap(s.Patient)
				m[lang] = &s
			}
			tt.mutate(m)

			data, err := json.Marshal(m)
			require.NoError(t, err)

			_, err = Parse(data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("en: [unclosed"))
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	r := mux.NewRouter()
	NewHandler(c).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/locales/fr", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got Strings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "fr", got.Language)
	assert.Equal(t, "Portail Patient", got.Patient["header_subtitle"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/locales", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"code":"en","name":"English"},{"code":"es","name":"Español"},{"code":"fr","name":"Français"}]`, rec.Body.String())
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
