package rft

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/omegalab/rft/domain"
	"gopkg.in/yaml.v3"
)

// Manifest describes an installable extension: its metadata plus the URL of
// the Lua source to fetch.
type Manifest struct {
	Name        string `yaml:"name"`
	Author      string `yaml:"author"`
	SourceURL   string `yaml:"source_url"`
	Description string `yaml:"description"`
	Entry       string `yaml:"entry"` // URL of the extension's Lua source
}

// ParseManifest parses a YAML extension manifest.
func ParseManifest(data []byte) (Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return manifest, fmt.Errorf("unmarshalling yaml : %w", err)
	}
	if manifest.Name == "" {
		return manifest, errors.New("manifest has no name")
	}
	if manifest.Entry == "" {
		return manifest, errors.New("manifest has no entry")
	}
	return manifest, nil
}

// Get fetches a URL and returns the body as a string.
func Get(url string) (string, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	res, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("getting %s : %w", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("getting %s : status %s", url, res.Status)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("reading resp body : %w", err)
	}
	return string(body), nil
}

// FetchManifest fetches and parses an extension manifest from a URL.
func FetchManifest(url string) (Manifest, error) {
	body, err := Get(url)
	if err != nil {
		return Manifest{}, err
	}
	return ParseManifest([]byte(body))
}

// InstallExtension fetches an extension manifest and its Lua source and
// stores the extension in the repository. The extension starts disabled;
// enable it with ToggleExtension.
func (engine *Engine) InstallExtension(manifestURL string) error {
	if engine.Repo == nil {
		return errors.New("engine has no repository configured")
	}

	manifest, err := FetchManifest(manifestURL)
	if err != nil {
		return fmt.Errorf("fetching manifest %s : %w", manifestURL, err)
	}

	luaContent, err := Get(manifest.Entry)
	if err != nil {
		return fmt.Errorf("fetching extension source %s : %w", manifest.Entry, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating new uuid : %w", err)
	}
	extension := &domain.Extension{
		ID:          id,
		Name:        manifest.Name,
		SourceURL:   manifest.SourceURL,
		Author:      manifest.Author,
		LuaContent:  luaContent,
		Description: manifest.Description,
		UpdatedAt:   time.Now(),
	}
	if err := engine.Repo.CreateExtension(extension); err != nil {
		return fmt.Errorf("creating extension %s : %w", manifest.Name, err)
	}
	return nil
}
