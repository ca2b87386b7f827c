package layout

import "composer/internal/domain"

// SizeFor returns the rendered size of a shape: a fixed width and one row
// per plain attribute of its definition, capped at MaxRows.
func SizeFor(shape *domain.ShapeEntity, opts Options) domain.Size {
	opts = opts.normalize()
	rows := 0
	if shape.Definition != nil {
		for _, attr := range shape.Definition.Attributes {
			if !attr.Modifier.IsReadOnly() {
				rows++
			}
		}
	}
	if rows > opts.MaxRows {
		rows = opts.MaxRows
	}
	return domain.Size{
		Width:  opts.NodeWidth,
		Height: opts.BaseHeight + float64(rows)*opts.RowHeight,
	}
}

// ensureSize sizes shapes that have not been measured yet.
func ensureSize(shape *domain.ShapeEntity, opts Options) {
	if shape.Size.Width <= 0 || shape.Size.Height <= 0 {
		shape.Size = SizeFor(shape, opts)
	}
}
