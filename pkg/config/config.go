package config

import (
	"runtime"

	"github.com/C-Sto/gomftdump/pkg/filelisting"
	"github.com/C-Sto/gomftdump/pkg/ntfsdump"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	KindFlat   = "flat"
	KindVolume = "volume"
)

type Source struct {
	Path string `yaml:"path"`
	//Kind is flat (an extracted $MFT) or volume (a device or full image)
	Kind       string `yaml:"kind"`
	RecordSize int    `yaml:"record_size"`
}

type Output struct {
	//Path of the output file, stdout when empty
	Path     string `yaml:"path"`
	Compress bool   `yaml:"compress"`
	//Timeline writes one flattened row per file name instead of the full attribute set
	Timeline bool `yaml:"timeline"`
}

//Settings for one dump job
type Settings struct {
	Source  Source `yaml:"source"`
	Workers int    `yaml:"workers"`
	//PathCache is how many directory paths the timeline keeps resolved
	PathCache int    `yaml:"path_cache"`
	LogLevel  string `yaml:"log_level"`
	Output    Output `yaml:"output"`
}

func Default() Settings {
	return Settings{
		Source:    Source{Kind: KindFlat},
		Workers:   runtime.NumCPU(),
		PathCache: filelisting.DefaultCacheLimit,
		LogLevel:  "info",
	}
}

//Load reads a yaml job file. Keys missing from the file keep their default value.
func Load(fs afero.Fs, path string) (Settings, error) {
	s := Default()
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return s, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return s, errors.Wrapf(err, "parsing config %s", path)
	}
	return s, s.Validate()
}

func (s Settings) Validate() error {
	switch s.Source.Kind {
	case KindFlat, KindVolume:
	default:
		return errors.Errorf("unknown source kind %q", s.Source.Kind)
	}
	if s.Source.RecordSize != 0 && (s.Source.RecordSize < 0 || !ntfsdump.ValidRecordSize(uint64(s.Source.RecordSize))) {
		return errors.Errorf("record size %d is not a power of two between %d and %d",
			s.Source.RecordSize, ntfsdump.MinRecordSize, ntfsdump.MaxRecordSize)
	}
	if s.Workers < 0 {
		return errors.Errorf("negative worker count %d", s.Workers)
	}
	if s.PathCache < 1 {
		return errors.Errorf("path cache of %d entries", s.PathCache)
	}
	return nil
}

//Save writes the settings back out as yaml
func (s Settings) Save(fs afero.Fs, path string) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return errors.Wrapf(afero.WriteFile(fs, path, b, 0644), "writing config %s", path)
}
