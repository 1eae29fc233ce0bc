package dashboard

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Manager loads and saves a dashboard definition file
type Manager struct {
	path      string
	dashboard Dashboard
}

// NewManager opens the dashboard at path. A missing file yields an empty
// dashboard named after the file.
func NewManager(path string) (*Manager, error) {
	m := &Manager{path: path}

	if _, err := os.Stat(path); err == nil {
		if err := m.Load(); err != nil {
			return nil, errors.Wrap(err, "load dashboard")
		}
		return m, nil
	}

	m.dashboard.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return m, nil
}

// Load reads the YAML file, validates every chart and assigns IDs to charts
// that have none
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return errors.Wrap(err, "read dashboard file")
	}

	var d Dashboard
	if err := yaml.Unmarshal(data, &d); err != nil {
		return errors.Wrap(err, "parse dashboard")
	}
	if err := d.prepare(); err != nil {
		return err
	}
	m.dashboard = d
	return nil
}

func (d *Dashboard) prepare() error {
	seen := make(map[string]bool, len(d.Charts))
	for i := range d.Charts {
		c := &d.Charts[i]
		if err := c.Validate(); err != nil {
			return errors.Wrapf(err, "chart %d (%s)", i, c.Title)
		}
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if seen[c.ID] {
			return errors.Errorf("chart %d (%s): duplicate id %q", i, c.Title, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// Save writes the dashboard back to its YAML file
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.dashboard)
	if err != nil {
		return errors.Wrap(err, "marshal dashboard")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return errors.Wrap(err, "create dashboard directory")
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return errors.Wrap(err, "write dashboard file")
	}
	return nil
}

// Dashboard returns the loaded dashboard
func (m *Manager) Dashboard() *Dashboard {
	return &m.dashboard
}

// Add validates and appends a chart, then saves. Titles are unique
// case-insensitively.
func (m *Manager) Add(c Chart) (*Chart, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	for _, existing := range m.dashboard.Charts {
		if strings.EqualFold(existing.Title, c.Title) {
			return nil, errors.Errorf("a chart titled %q already exists (titles are case-insensitive)", c.Title)
		}
		if c.ID != "" && existing.ID == c.ID {
			return nil, errors.Errorf("a chart with id %q already exists", c.ID)
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	m.dashboard.Charts = append(m.dashboard.Charts, c)
	if err := m.Save(); err != nil {
		return nil, errors.Wrap(err, "save chart")
	}
	return &m.dashboard.Charts[len(m.dashboard.Charts)-1], nil
}

// Delete removes a chart by ID and saves
func (m *Manager) Delete(id string) error {
	for i, c := range m.dashboard.Charts {
		if c.ID == id {
			m.dashboard.Charts = append(m.dashboard.Charts[:i], m.dashboard.Charts[i+1:]...)
			if err := m.Save(); err != nil {
				return errors.Wrap(err, "save dashboard after deletion")
			}
			return nil
		}
	}
	return errors.Errorf("chart with ID %q was not found", id)
}

// Search returns charts whose title or source mentions text
func (m *Manager) Search(text string) []Chart {
	if text == "" {
		return m.dashboard.Charts
	}
	text = strings.ToLower(text)
	var results []Chart
	for _, c := range m.dashboard.Charts {
		if strings.Contains(strings.ToLower(c.Title), text) ||
			strings.Contains(strings.ToLower(c.Source.Table), text) ||
			strings.Contains(strings.ToLower(c.Source.SQL), text) {
			results = append(results, c)
		}
	}
	return results
}
