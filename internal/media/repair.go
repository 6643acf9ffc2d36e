package media

// Repair returns a copy of r that passes Validate.
//
// Policy:
//   - coverIndex out of bounds: 0 when assets exist, otherwise unset.
//   - logoIndex out of bounds: unset.
//   - cover and logo on the same position: keep cover, unset logo.
//
// Bounds are fixed first so a cover reset to 0 that lands on the logo is
// resolved in the same pass. Repair(Repair(r)) equals Repair(r).
func Repair(r Record) Record {
	out := r.Clone()
	n := out.Len()
	c := &out.Collection

	if c.CoverIndex != nil && !inBounds(c.CoverIndex, n) {
		if n > 0 {
			c.CoverIndex = Index(0)
		} else {
			c.CoverIndex = nil
		}
	}
	if c.LogoIndex != nil && !inBounds(c.LogoIndex, n) {
		c.LogoIndex = nil
	}
	if c.CoverIndex != nil && c.LogoIndex != nil && *c.CoverIndex == *c.LogoIndex {
		c.LogoIndex = nil
	}
	return out
}
