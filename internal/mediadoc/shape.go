package mediadoc

// Shape names the stored encoding of a document's media fields.
type Shape string

const (
	ShapeCanonical Shape = "canonical"
	ShapeTagged    Shape = "tagged"
	ShapeMixed     Shape = "mixed"
	ShapeMalformed Shape = "malformed"
)

// Classify reports which historical encoding a document uses. Any dropped
// entry or unusable index value makes the document malformed, as does a bare
// string in place of the images array.
func Classify(fields map[string]any) Shape {
	if _, ok := fields[ImagesKey].(string); ok {
		return ShapeMalformed
	}
	items, skip := collectionItems(fields[ImagesKey])
	if skip != nil {
		return ShapeMalformed
	}
	for _, key := range []string{CoverIndexKey, LogoIndexKey} {
		if raw, ok := fields[key]; ok && raw != nil {
			if _, ok := IntValue(raw); !ok {
				return ShapeMalformed
			}
		}
	}
	var strings, tagged int
	for _, item := range items {
		switch DecodeEntry(item).(type) {
		case CanonicalEntry:
			strings++
		case TaggedEntry:
			tagged++
		default:
			return ShapeMalformed
		}
	}
	switch {
	case tagged == 0:
		return ShapeCanonical
	case strings == 0:
		return ShapeTagged
	default:
		return ShapeMixed
	}
}
