package filter

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// StateFile remembers the last selected non-default filter across runs.
const StateFile = "filter.json"

func statePath(dir string) string {
	return filepath.Join(dir, StateFile)
}

func loadSelection(dir string) (Selection, bool, error) {
	f, err := os.Open(statePath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return Selection{}, false, nil
		}
		return Selection{}, false, err
	}
	defer f.Close()

	var sel Selection
	if err := json.NewDecoder(f).Decode(&sel); err != nil {
		return Selection{}, false, err
	}
	return sel, sel.Name != "", nil
}

func saveSelection(dir string, sel Selection) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.Printf("Warning: could not create state directory: %v", err)
		return
	}

	f, err := os.OpenFile(statePath(dir), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		log.Printf("Warning: could not persist filter selection: %v", err)
		return
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(sel); err != nil {
		log.Printf("Warning: could not persist filter selection: %v", err)
	}
}

func clearSelection(dir string) {
	if err := os.Remove(statePath(dir)); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not clear filter selection: %v", err)
	}
}
