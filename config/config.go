// Package config loads the optional YAML tunables file for the a6fw
// tools. Every field has a spec-mandated default, so a missing file is
// not an error — it just means "use the defaults."
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/a6tools/a6fw/block"
	"github.com/a6tools/a6fw/sysex"
)

// Config holds the tunables an operator may override per deployment.
type Config struct {
	ManufacturerID    [4]byte        `yaml:"manufacturer_id"`
	DetectorCapacity  int            `yaml:"detector_capacity"`
	RecognizedOpcodes []sysex.Opcode `yaml:"recognized_opcodes"`
	CheckpointPath    string         `yaml:"checkpoint_path"`
}

// Default returns the configuration that applies when no file is loaded:
// the manufacturer ID and opcodes fixed by the firmware protocol, a
// detector capacity with slack over the expected 311-septet envelope so a
// genuine overflow is still reported rather than silently truncated, and
// checkpointing disabled.
func Default() Config {
	return Config{
		ManufacturerID:    sysex.ManufacturerID,
		DetectorCapacity:  block.Len7Bit + 64,
		RecognizedOpcodes: []sysex.Opcode{sysex.OpOSUpdate, sysex.OpBootUpdate},
		CheckpointPath:    "",
	}
}

// rawConfig mirrors Config but with plain-integer fields so yaml.v3 can
// decode a manufacturer_id list of small ints and an opcode list without
// needing custom UnmarshalYAML hooks on Config itself.
type rawConfig struct {
	ManufacturerID    []int   `yaml:"manufacturer_id"`
	DetectorCapacity  *int    `yaml:"detector_capacity"`
	RecognizedOpcodes []int   `yaml:"recognized_opcodes"`
	CheckpointPath    *string `yaml:"checkpoint_path"`
}

// Load reads a YAML config file at path, applying spec defaults for any
// field the file omits. A missing file is not an error: Load returns
// Default() unchanged.
func Load(path string) (Config, error) {
	var cfg = Default()

	var data, err = os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, err
	}

	if len(raw.ManufacturerID) > 0 {
		var id [4]byte
		for i := 0; i < 4 && i < len(raw.ManufacturerID); i++ {
			id[i] = byte(raw.ManufacturerID[i])
		}
		cfg.ManufacturerID = id
	}

	if raw.DetectorCapacity != nil {
		cfg.DetectorCapacity = *raw.DetectorCapacity
	}

	if len(raw.RecognizedOpcodes) > 0 {
		var ops = make([]sysex.Opcode, len(raw.RecognizedOpcodes))
		for i, v := range raw.RecognizedOpcodes {
			ops[i] = sysex.Opcode(v)
		}
		cfg.RecognizedOpcodes = ops
	}

	if raw.CheckpointPath != nil {
		cfg.CheckpointPath = *raw.CheckpointPath
	}

	return cfg, nil
}
