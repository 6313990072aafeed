package emucore

// Layout is the spatial arrangement of the two screens in the output frame.
type Layout int

const (
	LayoutTopBottom Layout = iota
	LayoutSideBySide
	LayoutTopOnly
	LayoutBottomOnly
)

// Layouts lists all layouts in option order.
var Layouts = []Layout{LayoutTopBottom, LayoutSideBySide, LayoutTopOnly, LayoutBottomOnly}

// String returns the option value for the layout.
func (l Layout) String() string {
	switch l {
	case LayoutTopBottom:
		return "top_bottom"
	case LayoutSideBySide:
		return "left_right"
	case LayoutTopOnly:
		return "top_only"
	case LayoutBottomOnly:
		return "bottom_only"
	default:
		return "unknown"
	}
}

// ParseLayout converts an option value to a Layout. Both the libretro
// option values and their camel-case names are accepted.
func ParseLayout(s string) (Layout, bool) {
	switch s {
	case "top_bottom", "topBottom":
		return LayoutTopBottom, true
	case "left_right", "sideBySide", "side_by_side":
		return LayoutSideBySide, true
	case "top_only", "topOnly":
		return LayoutTopOnly, true
	case "bottom_only", "bottomOnly":
		return LayoutBottomOnly, true
	}
	return LayoutTopBottom, false
}

// Next returns the layout following l in option order.
func (l Layout) Next() Layout {
	return Layouts[(int(l)+1)%len(Layouts)]
}
