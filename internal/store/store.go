// Package store persists the scanner databases as flat keyed JSON documents,
// rewritten in full on every save. A corrupt or missing file loads as an
// empty store.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/drexon5/polymarket-trader-analyzer/internal/logging"
	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
)

// TraderStore is the quick-scan database keyed by address.
type TraderStore struct {
	path    string
	Traders map[string]models.TraderSummary
}

// LoadTraders reads the quick-scan database from path.
func LoadTraders(path string) *TraderStore {
	s := &TraderStore{path: path, Traders: make(map[string]models.TraderSummary)}
	var loaded map[string]models.TraderSummary
	if loadJSON(path, &loaded) && loaded != nil {
		s.Traders = loaded
		logging.Infof("loaded %d traders from %s", len(s.Traders), path)
	}
	return s
}

// Save rewrites the whole database file.
func (s *TraderStore) Save() error {
	return saveJSON(s.path, s.Traders)
}

// DetailStore is the deep-analysis database keyed by address.
type DetailStore struct {
	path    string
	Traders map[string]models.TraderDetail
}

// LoadDetails reads the deep-analysis database from path.
func LoadDetails(path string) *DetailStore {
	s := &DetailStore{path: path, Traders: make(map[string]models.TraderDetail)}
	var loaded map[string]models.TraderDetail
	if loadJSON(path, &loaded) && loaded != nil {
		s.Traders = loaded
		logging.Infof("loaded %d detailed profiles from %s", len(s.Traders), path)
	}
	return s
}

// Save rewrites the whole database file.
func (s *DetailStore) Save() error {
	return saveJSON(s.path, s.Traders)
}

// Details returns the detail records sorted by address for deterministic
// iteration.
func (s *DetailStore) Details() []models.TraderDetail {
	out := make([]models.TraderDetail, 0, len(s.Traders))
	for _, d := range s.Traders {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// LoadPromising reads the promising-address list. A missing file returns
// (nil, false); a corrupt one is treated the same so the caller can fall back
// to re-deriving the list.
func LoadPromising(path string) ([]string, bool) {
	var addrs []string
	if !loadJSON(path, &addrs) {
		return nil, false
	}
	return addrs, true
}

// SavePromising rewrites the promising-address list.
func SavePromising(path string, addrs []string) error {
	return saveJSON(path, addrs)
}

func loadJSON(path string, dst any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logging.Errorf("corrupt store %s, starting fresh: %v", path, err)
		return false
	}
	return true
}

func saveJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure store dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write store %s: %w", path, err)
	}
	return nil
}
