// Package config defines the options recognized across the pipeline
// stages and loads them from a TOML file, matching the teacher's
// zero-value-means-default convention (see
// github.com/pascaldekloe/part5's session.TCPConfig.check).
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config collects every tunable recognized by the parser, validator,
// normalizer and pipeline runtime. A zero Config is not directly
// usable; call Default or Load, both of which call check to fill in
// unset fields.
type Config struct {
	// Parser / validator
	StrictMode             bool    `toml:"strict_mode"`
	SupportAllBlocks       bool    `toml:"support_all_blocks"`
	ValidateContourClosure bool    `toml:"validate_contour_closure"`
	GeometryTolerance      float64 `toml:"geometry_tolerance"`
	MaxFileSize            int64   `toml:"max_file_size"`

	// Normalizer
	EnableGeometryCache        bool   `toml:"enable_geometry_cache"`
	CoordinateSystem           string `toml:"coordinate_system"` // "right-handed" | "left-handed"
	Units                      string `toml:"units"`             // "mm" | "inch"
	FeatureIDPrefix            string `toml:"feature_id_prefix"`
	TubeContourConvention      string `toml:"tube_contour_convention"` // "final-shape" | "cut-to-make"
	DisableMarkingFaceOverride bool   `toml:"disable_marking_face_override"`

	// Pipeline runtime
	StageTimeout   time.Duration `toml:"-"`
	StageTimeoutMs int64         `toml:"stage_timeout_ms"`
	MaxRetries     int           `toml:"max_retries"`
	AbortOnError   bool          `toml:"abort_on_error"`
	EnableDebugLogs bool         `toml:"enable_debug_logs"`
}

// Default returns a Config with every documented default applied.
func Default() Config {
	c := Config{AbortOnError: true, SupportAllBlocks: true, ValidateContourClosure: true}
	c.check()
	return c
}

// check fills in the documented default for every unset field whose
// zero value is distinguishable from "unset" (numeric and string
// fields). Unlike session.TCPConfig.check in the teacher repo this
// never panics: all of this package's options have a sane zero-
// equivalent default, so an out-of-range value is left to the
// consuming stage to reject as a diagnostic rather than a
// configuration-time panic. bool fields whose documented default is
// true (SupportAllBlocks, ValidateContourClosure, AbortOnError) can't
// be defaulted here — false is indistinguishable from unset — so
// Default and Load set them explicitly before calling check.
func (c *Config) check() *Config {
	if c.GeometryTolerance == 0 {
		c.GeometryTolerance = 0.01
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = 50 * 1024 * 1024
	}
	if c.CoordinateSystem == "" {
		c.CoordinateSystem = "right-handed"
	}
	if c.Units == "" {
		c.Units = "mm"
	}
	if c.FeatureIDPrefix == "" {
		c.FeatureIDPrefix = "dstv"
	}
	if c.TubeContourConvention == "" {
		c.TubeContourConvention = "final-shape"
	}
	if c.StageTimeoutMs == 0 {
		c.StageTimeoutMs = 30_000
	}
	c.StageTimeout = time.Duration(c.StageTimeoutMs) * time.Millisecond
	return c
}

// Load reads a TOML file at path and returns a Config with documented
// defaults applied to every field absent from the file.
func Load(path string) (Config, error) {
	var c Config
	meta, err := toml.DecodeFile(path, &c)
	if err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if !meta.IsDefined("abort_on_error") {
		c.AbortOnError = true
	}
	if !meta.IsDefined("support_all_blocks") {
		c.SupportAllBlocks = true
	}
	if !meta.IsDefined("validate_contour_closure") {
		c.ValidateContourClosure = true
	}
	c.check()
	return c, nil
}
