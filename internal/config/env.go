package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFiles are loaded in order. godotenv never overrides a variable that is
// already set, so earlier files win over later ones and the real process
// environment wins over both.
var envFiles = []string{".env.local", ".env"}

// LoadEnvFiles loads .env.local and .env from dir into the process environment
// and returns the files that were applied. Missing files are skipped.
func LoadEnvFiles(dir string) ([]string, error) {
	var loaded []string
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("load env file %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
