package action

import (
	"chosenoffset.com/battlefx/shape"
)

// areaStyle is the default area for a category
type areaStyle struct {
	kind   shape.Kind
	anchor Anchor
}

// categoryAreas maps each category to the area it produces when a template
// does not name a shape. Categories missing from the table use defaultArea.
var categoryAreas = map[Category]areaStyle{
	CategoryFire:      {kind: shape.KindCircle, anchor: AnchorTarget},
	CategoryCold:      {kind: shape.KindCone, anchor: AnchorSelf},
	CategoryLightning: {kind: shape.KindLine, anchor: AnchorSelf},
	CategoryPoison:    {kind: shape.KindSquare, anchor: AnchorTarget},
	CategoryDivine:    {kind: shape.KindCircle, anchor: AnchorSelf},
	CategoryForce:     {kind: shape.KindSquare, anchor: AnchorTarget},
}

var defaultArea = areaStyle{kind: shape.KindCircle, anchor: AnchorTarget}

// areaBuilder builds an area from the cast origin and the aim point
type areaBuilder func(tg Targeting, origin, aim shape.Point) shape.Shape

var areaBuilders = map[shape.Kind]areaBuilder{
	shape.KindCircle: func(tg Targeting, _, center shape.Point) shape.Shape {
		return shape.Circle{Center: center, Radius: tg.Radius}
	},
	shape.KindSquare: func(tg Targeting, _, center shape.Point) shape.Shape {
		size := tg.Size
		if size <= 0 {
			size = tg.Radius * 2
		}
		return shape.Square{Center: center, Size: size}
	},
	shape.KindCone: func(tg Targeting, origin, aim shape.Point) shape.Shape {
		return shape.Cone{
			Origin:    origin,
			Direction: shape.Bearing(origin, aim),
			Angle:     tg.Angle,
			Range:     tg.Range,
		}
	},
	shape.KindLine: func(tg Targeting, origin, aim shape.Point) shape.Shape {
		return shape.Line{
			Start: origin,
			End:   shape.FromPolar(origin, shape.Bearing(origin, aim), tg.Range),
			Width: tg.Width,
		}
	},
}

// AreaKind returns the shape and anchor the template's area uses, resolving
// an empty shape through the category table.
func (t *Template) AreaKind() (shape.Kind, Anchor, error) {
	style, ok := categoryAreas[t.Category]
	if !ok {
		style = defaultArea
	}

	if t.Targeting.Shape != "" {
		kind, err := shape.ParseKind(t.Targeting.Shape)
		if err != nil {
			return 0, "", err
		}
		style.kind = kind
	}
	if t.Targeting.Anchor != "" {
		style.anchor = t.Targeting.Anchor
	}
	if style.kind == shape.KindCone || style.kind == shape.KindLine {
		style.anchor = AnchorSelf
	}
	return style.kind, style.anchor, nil
}

// BuildArea generates the template's area. aim is nil when no target point
// was bound. It returns nil for non-area templates and for areas that need
// an aim point they did not get.
func (t *Template) BuildArea(origin shape.Point, aim *shape.Point) shape.Shape {
	if !t.RequiresArea() {
		return nil
	}
	kind, anchor, err := t.AreaKind()
	if err != nil {
		return nil
	}
	build, ok := areaBuilders[kind]
	if !ok {
		return nil
	}

	switch {
	case kind == shape.KindCone || kind == shape.KindLine:
		if aim == nil {
			return nil
		}
		return build(t.Targeting, origin, *aim)
	case anchor == AnchorSelf:
		return build(t.Targeting, origin, origin)
	case aim == nil:
		return nil
	default:
		return build(t.Targeting, origin, *aim)
	}
}
