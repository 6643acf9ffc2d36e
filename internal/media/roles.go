package media

import "strings"

// Cover returns the cover asset. An explicit in-bounds coverIndex wins;
// otherwise the first asset stands in as the cover. ok is false only when the
// collection is empty.
func Cover(r Record) (string, bool) {
	assets := r.Collection.Assets
	if len(assets) == 0 {
		return "", false
	}
	if inBounds(r.Collection.CoverIndex, len(assets)) {
		return assets[*r.Collection.CoverIndex], true
	}
	return assets[0], true
}

// Logo returns the logo asset when logoIndex is set and in bounds. There is no
// fallback; a record without a logo is normal.
func Logo(r Record) (string, bool) {
	if !inBounds(r.Collection.LogoIndex, len(r.Collection.Assets)) {
		return "", false
	}
	return r.Collection.Assets[*r.Collection.LogoIndex], true
}

// Poster returns the record's standalone poster URL.
func Poster(r Record) (string, bool) {
	if r.Poster == "" {
		return "", false
	}
	return r.Poster, true
}

// SetCoverIndex points the cover role at index. An out-of-range index leaves
// the record unchanged and returns an *IndexError; callers log it and carry on.
func SetCoverIndex(r Record, index int) (Record, error) {
	return setRole(r, RoleCover, index)
}

// SetLogoIndex points the logo role at index. See SetCoverIndex.
func SetLogoIndex(r Record, index int) (Record, error) {
	return setRole(r, RoleLogo, index)
}

// ClearCover unassigns the cover role.
func ClearCover(r Record) Record {
	out := r.Clone()
	out.Collection.CoverIndex = nil
	return out
}

// ClearLogo unassigns the logo role.
func ClearLogo(r Record) Record {
	out := r.Clone()
	out.Collection.LogoIndex = nil
	return out
}

func setRole(r Record, role Role, index int) (Record, error) {
	out := r.Clone()
	if index < 0 || index >= r.Len() {
		return out, &IndexError{Role: role, Index: index, Length: r.Len()}
	}
	switch role {
	case RoleCover:
		out.Collection.CoverIndex = Index(index)
	case RoleLogo:
		out.Collection.LogoIndex = Index(index)
	}
	return out, nil
}

// AppendAsset adds url at the end of the collection.
func AppendAsset(r Record, url string) (Record, error) {
	return InsertAsset(r, r.Len(), url)
}

// InsertAsset places url at pos (0 <= pos <= len). Role pointers keep
// addressing the same assets they did before the insert. Invalid pointers are
// repaired first; growing the collection would otherwise bring a pointer equal
// to the old length into range.
func InsertAsset(r Record, pos int, url string) (Record, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return r.Clone(), ErrEmptyURL
	}
	n := r.Len()
	if pos < 0 || pos > n {
		return r.Clone(), &IndexError{Index: pos, Length: n}
	}
	out := Repair(r)
	assets := make([]string, 0, n+1)
	assets = append(assets, out.Collection.Assets[:pos]...)
	assets = append(assets, url)
	assets = append(assets, out.Collection.Assets[pos:]...)
	out.Collection.Assets = assets

	shift := func(p int) int {
		if p >= pos {
			return p + 1
		}
		return p
	}
	out.Collection.CoverIndex = remap(out.Collection.CoverIndex, n, shift)
	out.Collection.LogoIndex = remap(out.Collection.LogoIndex, n, shift)
	return out, nil
}

// RemoveAsset deletes the asset at pos. A role pointing at the removed asset
// is cleared; pointers after it move down by one.
func RemoveAsset(r Record, pos int) (Record, error) {
	out := r.Clone()
	n := r.Len()
	if pos < 0 || pos >= n {
		return out, &IndexError{Index: pos, Length: n}
	}
	assets := make([]string, 0, n-1)
	assets = append(assets, r.Collection.Assets[:pos]...)
	assets = append(assets, r.Collection.Assets[pos+1:]...)
	out.Collection.Assets = assets

	shift := func(p int) int {
		switch {
		case p == pos:
			return -1
		case p > pos:
			return p - 1
		default:
			return p
		}
	}
	out.Collection.CoverIndex = remap(out.Collection.CoverIndex, n, shift)
	out.Collection.LogoIndex = remap(out.Collection.LogoIndex, n, shift)
	return out, nil
}

// MoveAsset relocates the asset at from so it ends up at to. Role pointers
// follow the assets they addressed.
func MoveAsset(r Record, from, to int) (Record, error) {
	out := r.Clone()
	n := r.Len()
	if from < 0 || from >= n {
		return out, &IndexError{Index: from, Length: n}
	}
	if to < 0 || to >= n {
		return out, &IndexError{Index: to, Length: n}
	}
	if from == to {
		return out, nil
	}
	moved := out.Collection.Assets[from]
	assets := make([]string, 0, n)
	assets = append(assets, out.Collection.Assets[:from]...)
	assets = append(assets, out.Collection.Assets[from+1:]...)
	assets = append(assets[:to], append([]string{moved}, assets[to:]...)...)
	out.Collection.Assets = assets

	shift := func(p int) int {
		switch {
		case p == from:
			return to
		case from < to && p > from && p <= to:
			return p - 1
		case from > to && p >= to && p < from:
			return p + 1
		default:
			return p
		}
	}
	out.Collection.CoverIndex = remap(out.Collection.CoverIndex, n, shift)
	out.Collection.LogoIndex = remap(out.Collection.LogoIndex, n, shift)
	return out, nil
}

// remap applies fn to an in-bounds pointer. Out-of-bounds pointers are left
// for Repair; a negative result clears the pointer.
func remap(p *int, length int, fn func(int) int) *int {
	if !inBounds(p, length) {
		return p
	}
	next := fn(*p)
	if next < 0 {
		return nil
	}
	return Index(next)
}
