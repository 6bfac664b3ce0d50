package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// listJSON returns the basenames (without extension) of the .json files in
// dataDir/sub. A missing directory is an empty list.
func (r *RedisStorage) listJSON(sub string) ([]string, error) {
	dir := filepath.Join(r.dataDir, sub)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s directory: %w", sub, err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// readJSON decodes dataDir/sub/id.json into v. It reports false when the
// file does not exist.
func (r *RedisStorage) readJSON(sub, id string, v any) (bool, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return false, fmt.Errorf("invalid id: %q", id)
	}
	path := filepath.Join(r.dataDir, sub, id+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}
