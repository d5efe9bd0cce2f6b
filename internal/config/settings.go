package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/sysgraph/internal/duration"
	"github.com/unkn0wn-root/sysgraph/internal/errdef"
	"github.com/unkn0wn-root/sysgraph/internal/theme"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

const settingsBase = "settings"

type Settings struct {
	Chart   ChartSettings   `toml:"chart" yaml:"chart"`
	Collect CollectSettings `toml:"collect" yaml:"collect"`
	Record  RecordSettings  `toml:"record" yaml:"record"`
	Colors  theme.Spec      `toml:"colors" yaml:"colors"`
	Derived []DerivedSeries `toml:"derived,omitempty" yaml:"derived,omitempty"`
}

type ChartSettings struct {
	Window    string `toml:"window" yaml:"window"`
	Precision int    `toml:"precision" yaml:"precision"`
	Color     bool   `toml:"color" yaml:"color"`
}

type CollectSettings struct {
	Interval string   `toml:"interval" yaml:"interval"`
	Sources  []string `toml:"sources" yaml:"sources"`
	Feed     string   `toml:"feed,omitempty" yaml:"feed,omitempty"`
}

type RecordSettings struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path,omitempty" yaml:"path,omitempty"`
}

// DerivedSeries is a series computed from the latest values of the others.
type DerivedSeries struct {
	Name string `toml:"name" yaml:"name"`
	Expr string `toml:"expr" yaml:"expr"`
	Kind string `toml:"kind,omitempty" yaml:"kind,omitempty"`
}

// SettingsHandle remembers where settings came from so saves go back there.
type SettingsHandle struct {
	Path   string
	Format Format
}

func DefaultSettings() Settings {
	return Settings{
		Chart: ChartSettings{
			Window:    "5m",
			Precision: 2,
			Color:     true,
		},
		Collect: CollectSettings{
			Interval: "1s",
			Sources:  []string{"cpu", "mem", "runtime"},
		},
	}
}

// WindowDuration is the visible time window; unparsable or non-positive
// values fall back to five minutes.
func (s ChartSettings) WindowDuration() time.Duration {
	if d := duration.ParseOr(s.Window, 0); d > 0 {
		return d
	}
	return 5 * time.Minute
}

func (s CollectSettings) IntervalDuration() time.Duration {
	if d := duration.ParseOr(s.Interval, 0); d > 0 {
		return d
	}
	return time.Second
}

// LoadSettings reads settings.toml or settings.yaml from Dir(). A missing file
// yields defaults and a TOML handle.
func LoadSettings() (Settings, SettingsHandle, error) {
	dir := Dir()
	for _, f := range []Format{FormatTOML, FormatYAML} {
		path := filepath.Join(dir, settingsBase+"."+string(f))
		if _, err := os.Stat(path); err == nil {
			return LoadSettingsFrom(path)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, settingsBase+".yml")); err == nil {
		return LoadSettingsFrom(filepath.Join(dir, settingsBase+".yml"))
	}
	return DefaultSettings(), SettingsHandle{
		Path:   filepath.Join(dir, settingsBase+".toml"),
		Format: FormatTOML,
	}, nil
}

func LoadSettingsFrom(path string) (Settings, SettingsHandle, error) {
	handle := SettingsHandle{Path: path, Format: formatOf(path)}
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, handle, nil
		}
		return s, handle, errdef.Wrap(errdef.CodeFilesystem, err, "read settings")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s, handle, nil
	}

	switch handle.Format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		err = toml.Unmarshal(data, &s)
	}
	if err != nil {
		return DefaultSettings(), handle, errdef.Wrap(errdef.CodeConfig, err, "parse %s", filepath.Base(path))
	}
	return s, handle, nil
}

// SaveSettings writes s under an advisory file lock, replacing the file
// atomically.
func SaveSettings(handle SettingsHandle, s Settings) error {
	if handle.Path == "" {
		return errdef.New(errdef.CodeConfig, "settings path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(handle.Path), 0o755); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create settings dir")
	}

	lock := flock.New(handle.Path + ".lock")
	if err := lock.Lock(); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "lock settings")
	}
	defer func() { _ = lock.Unlock() }()

	var (
		data []byte
		err  error
	)
	switch handle.Format {
	case FormatYAML:
		data, err = yaml.Marshal(s)
	default:
		data, err = toml.Marshal(s)
	}
	if err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "encode settings")
	}

	tmp := handle.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "write settings tmp")
	}
	if err := os.Rename(tmp, handle.Path); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "replace settings file")
	}
	return nil
}

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}
