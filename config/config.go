package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/katanacore/machine/errors"
)

// WarningBoilerPlate is written as a leading comment block whenever a
// Config is persisted to disk, so a user hand-editing the file knows it is
// machine-managed.
const WarningBoilerPlate = "" +
	"# this file is maintained by katanactl - hand edits may be overwritten\n"

// DefaultTimeslice is the scheduler's DEFAULT_TIMESLICE_LENGTH (spec.md §4.D).
const DefaultTimeslice = time.Millisecond

// Config is the machine core's settings object. Zero value is not valid;
// use New to obtain the defaulted value.
type Config struct {
	// BIOSPath locates the boot ROM image; katanactl's run command copies it
	// into the boot ROM through Machine.LoadBIOS.
	BIOSPath string `toml:"bios_path"`

	// ImagePath locates a flat program image, if any; katanactl's run
	// command copies it into main RAM through Machine.LoadImage. Disc-image
	// parsing is out of this core's scope (spec.md §1).
	ImagePath string `toml:"image_path"`

	// DCLOADAllowUnsafe gates hardware/trap's DCLOAD hook: when false, only
	// stdio read/write/lseek are honoured and open/close/exit are denied.
	DCLOADAllowUnsafe bool `toml:"dcload_allow_unsafe"`

	// MMIOTrace is stored and round-trips through TOML, but nothing reads
	// it: MMIO tracing is switched per region through mmio.Region.Trace.
	MMIOTrace bool `toml:"mmio_trace"`

	// Timeslice is the scheduler's time_to_run quantum (spec.md §4.D). Zero
	// means DefaultTimeslice.
	Timeslice time.Duration `toml:"timeslice_ns"`
}

// New returns a Config with every field at its documented default.
func New() *Config {
	return &Config{
		DCLOADAllowUnsafe: false,
		MMIOTrace:         false,
		Timeslice:         DefaultTimeslice,
	}
}

// NewDisk loads a Config from path, falling back to New() defaults for any
// field absent from the file. A missing file is not an error; it simply
// yields the defaults.
func NewDisk(path string) (*Config, error) {
	cfg := New()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Errorf("config: %v", err)
	}

	if _, err := toml.Decode(string(b), cfg); err != nil {
		return nil, errors.Errorf("config: %v", err)
	}
	if cfg.Timeslice <= 0 {
		cfg.Timeslice = DefaultTimeslice
	}

	return cfg, nil
}

// Save writes cfg to path as TOML, preceded by WarningBoilerPlate.
func (cfg *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Errorf("config: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString(WarningBoilerPlate); err != nil {
		return errors.Errorf("config: %v", err)
	}

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return errors.Errorf("config: %v", err)
	}
	return nil
}

func (cfg *Config) String() string {
	return fmt.Sprintf("bios=%q image=%q dcload_unsafe=%v mmio_trace=%v timeslice=%s",
		cfg.BIOSPath, cfg.ImagePath, cfg.DCLOADAllowUnsafe, cfg.MMIOTrace, cfg.Timeslice)
}
