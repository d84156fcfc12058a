package griddata

// Config is shared by all query points of a computation.
type Config struct {
	Threshold      Threshold
	ThresholdValue float64

	// DatumShift and Multiplier are applied to raster values as
	// value*Multiplier + DatumShift. They do not apply to lookup values.
	DatumShift float64
	Multiplier float64

	// DefaultValue is reported for points where no method found data.
	DefaultValue float64

	// Lookup maps raster classes to values. Entries equal to DefaultValue
	// are treated as missing.
	Lookup []float64
}

// DefaultConfig has no threshold, no shift, unit multiplier and -9999 as
// default value.
func DefaultConfig() Config {
	return Config{
		Threshold:    NoThreshold,
		Multiplier:   1,
		DefaultValue: -9999,
	}
}

func (c *Config) scale(v float64) float64 {
	return v*c.Multiplier + c.DatumShift
}

// keep reports whether the raster value v survives the threshold.
func (c *Config) keep(v float64) bool {
	switch c.Threshold {
	case KeepAbove:
		return c.scale(v) >= c.ThresholdValue
	case KeepBelow:
		return c.scale(v) <= c.ThresholdValue
	}
	return true
}

func (c *Config) lookup(class int32) (float64, bool) {
	if class < 0 || int(class) >= len(c.Lookup) {
		return 0, false
	}
	v := c.Lookup[class]
	if v == c.DefaultValue {
		return 0, false
	}
	return v, true
}
