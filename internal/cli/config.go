package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	VisitorID   string
	VisitorFile string
	Output      string
	Verbose     bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("GUMBALL_SERVER", "http://localhost:8080"),
		VisitorID:   os.Getenv("GUMBALL_VISITOR_ID"),
		VisitorFile: getEnvOrDefault("GUMBALL_VISITOR_FILE", defaultVisitorFile()),
		Output:      "text",
		Verbose:     false,
	}
}

// LoadVisitorID loads the visitor id from file if not already set.
// Reusing a stable id is what makes re-visiting a room idempotent rather
// than inflating its visitor count.
func (c *Config) LoadVisitorID() error {
	if c.VisitorID != "" {
		return nil
	}

	data, err := os.ReadFile(c.VisitorFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No visitor file is fine; the server will assign one
		}
		return err
	}

	c.VisitorID = strings.TrimSpace(string(data))
	return nil
}

// SaveVisitorID saves the visitor id to the visitor file
func (c *Config) SaveVisitorID(id string) error {
	c.VisitorID = id

	dir := filepath.Dir(c.VisitorFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.VisitorFile, []byte(id), 0600)
}

func defaultVisitorFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gumballctl/visitor"
	}
	return filepath.Join(home, ".gumballctl", "visitor")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
