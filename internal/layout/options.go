package layout

// Options holds the geometry used by every layout pass.
type Options struct {
	NodeWidth       float64 `mapstructure:"node_width" yaml:"node_width"`
	BaseHeight      float64 `mapstructure:"base_height" yaml:"base_height"`
	RowHeight       float64 `mapstructure:"row_height" yaml:"row_height"`
	MaxRows         int     `mapstructure:"max_rows" yaml:"max_rows"`
	ColumnSpacing   float64 `mapstructure:"column_spacing" yaml:"column_spacing"`
	RowGap          float64 `mapstructure:"row_gap" yaml:"row_gap"`
	EmbeddedOffsetX float64 `mapstructure:"embedded_offset_x" yaml:"embedded_offset_x"`
	StartX          float64 `mapstructure:"start_x" yaml:"start_x"`
	StartY          float64 `mapstructure:"start_y" yaml:"start_y"`

	// Step and MaxAttempts bound the tracker's downward probing.
	Step        float64 `mapstructure:"step" yaml:"step"`
	MaxAttempts int     `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// DefaultOptions returns the default geometry
func DefaultOptions() Options {
	return Options{
		NodeWidth:       264,
		BaseHeight:      52,
		RowHeight:       24,
		MaxRows:         8,
		ColumnSpacing:   400,
		RowGap:          40,
		EmbeddedOffsetX: 100,
		StartX:          50,
		StartY:          50,
		Step:            20,
		MaxAttempts:     1000,
	}
}

// normalize fills zero or negative fields with their defaults.
func (o Options) normalize() Options {
	d := DefaultOptions()
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.BaseHeight <= 0 {
		o.BaseHeight = d.BaseHeight
	}
	if o.RowHeight <= 0 {
		o.RowHeight = d.RowHeight
	}
	if o.MaxRows <= 0 {
		o.MaxRows = d.MaxRows
	}
	if o.ColumnSpacing <= 0 {
		o.ColumnSpacing = d.ColumnSpacing
	}
	if o.RowGap < 0 {
		o.RowGap = d.RowGap
	}
	if o.EmbeddedOffsetX < 0 {
		o.EmbeddedOffsetX = d.EmbeddedOffsetX
	}
	if o.Step <= 0 {
		o.Step = d.Step
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	return o
}
