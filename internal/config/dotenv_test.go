package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoadDotEnv(t *testing.T) {
	cases := []struct {
		name    string
		content string
		preset  map[string]string
		want    map[string]string
	}{
		{
			name:    "comments and export prefix",
			content: "# workspace\n\nCC_PORT=9090\nexport CC_ENV=staging\n",
			want:    map[string]string{"CC_PORT": "9090", "CC_ENV": "staging"},
		},
		{
			name:    "quoted values",
			content: "CC_DOUBLE=\"1K Utenti\"\nCC_SINGLE='100K Utenti'\n",
			want:    map[string]string{"CC_DOUBLE": "1K Utenti", "CC_SINGLE": "100K Utenti"},
		},
		{
			name:    "real environment wins",
			content: "CC_DB=file.db\n",
			preset:  map[string]string{"CC_DB": ":memory:"},
			want:    map[string]string{"CC_DB": ":memory:"},
		},
		{
			name:    "empty variable counts as unset",
			content: "CC_LEVEL=debug\n",
			preset:  map[string]string{"CC_LEVEL": ""},
			want:    map[string]string{"CC_LEVEL": "debug"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k := range tc.want {
				t.Setenv(k, "")
			}
			for k, v := range tc.preset {
				t.Setenv(k, v)
			}

			if err := loadDotEnv(writeDotEnv(t, tc.content)); err != nil {
				t.Fatalf("loadDotEnv: %v", err)
			}

			for k, want := range tc.want {
				if got := os.Getenv(k); got != want {
					t.Fatalf("%s=%q, want %q", k, got, want)
				}
			}
		})
	}
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
}
