package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// dataMarkers are files whose presence identifies a data directory.
var dataMarkers = []string{"digimon.json", "skills.csv", "items.csv", "bosses.json"}

// detectDataDir looks for a directory next to the working directory that
// already contains exported game data.
func detectDataDir() string {
	for _, candidate := range []string{"data", "public/data", "assets/data"} {
		for _, marker := range dataMarkers {
			if _, err := os.Stat(filepath.Join(candidate, marker)); err == nil {
				return candidate
			}
		}
	}
	return "data"
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to digiguide! Let's configure your guide server.")
	fmt.Println()

	cfg := DefaultConfig()

	dataPrompt := promptui.Prompt{
		Label:   "Directory holding digimon.json, skills.csv, items.csv and bosses.json",
		Default: detectDataDir(),
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.Data.Dir = dataDir

	guidesPrompt := promptui.Prompt{
		Label:   "Directory holding markdown strategy guides",
		Default: cfg.Guides.Dir,
	}
	guidesDir, err := guidesPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("guides dir: %w", err)
	}
	cfg.Guides.Dir = guidesDir

	localePrompt := promptui.Select{
		Label: "Default language",
		Items: cfg.Locale.Supported,
	}
	_, locale, err := localePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("locale selection: %w", err)
	}
	cfg.Locale.Default = locale

	upstreamPrompt := promptui.Prompt{
		Label:   "Image upstream base URL",
		Default: cfg.Images.Upstream,
	}
	upstream, err := upstreamPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("image upstream: %w", err)
	}
	cfg.Images.Upstream = upstream

	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(strings.TrimSpace(portStr))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
