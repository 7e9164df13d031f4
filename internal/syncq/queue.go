package syncq

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Command is one game action queued while offline, in the shape the
// sync replay endpoint accepts.
type Command struct {
	Type       string `json:"type"`
	Clicks     int64  `json:"clicks,omitempty"`
	BusinessID int64  `json:"business_id,omitempty"`
}

func (c Command) AsPayload() map[string]any {
	out := map[string]any{"type": c.Type}
	if c.Clicks > 0 {
		out["clicks"] = c.Clicks
	}
	if c.BusinessID > 0 {
		out["business_id"] = c.BusinessID
	}
	return out
}

func queuePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".tap")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "queue.json"), nil
}

func Load() ([]Command, error) {
	path, err := queuePath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Command{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return []Command{}, nil
	}
	var out []Command
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func Save(commands []Command) error {
	path, err := queuePath()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(commands, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func Push(cmd Command) error {
	commands, err := Load()
	if err != nil {
		return err
	}
	commands = append(commands, cmd)
	return Save(commands)
}
