package media

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrIndexOutOfRange reports a role or edit position outside the collection.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrEmptyURL reports an attempt to add a blank asset reference.
	ErrEmptyURL = errors.New("asset url is empty")
)

// Role names a semantic designation within a collection.
type Role string

const (
	RoleCover Role = "cover"
	RoleLogo  Role = "logo"
)

// Collection is an ordered list of asset URLs plus optional role pointers.
// A nil pointer means the role is unassigned.
type Collection struct {
	Assets     []string `json:"images"`
	CoverIndex *int     `json:"coverIndex,omitempty"`
	LogoIndex  *int     `json:"logoIndex,omitempty"`
}

// Record is the media view of a content record. Poster is independent of the
// collection and is never addressed by a role pointer.
type Record struct {
	ID         string     `json:"id"`
	Poster     string     `json:"poster,omitempty"`
	Collection Collection `json:"collection"`
}

// IndexError describes a rejected position. It matches ErrIndexOutOfRange.
type IndexError struct {
	Role   Role
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	label := "position"
	if e.Role != "" {
		label = string(e.Role) + " index"
	}
	return fmt.Sprintf("%s %d out of range for %d assets", label, e.Index, e.Length)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// Len returns the number of assets in the collection.
func (r Record) Len() int {
	return len(r.Collection.Assets)
}

// Clone returns a deep copy that shares no memory with r.
func (r Record) Clone() Record {
	out := r
	out.Collection.Assets = slices.Clone(r.Collection.Assets)
	out.Collection.CoverIndex = cloneIndex(r.Collection.CoverIndex)
	out.Collection.LogoIndex = cloneIndex(r.Collection.LogoIndex)
	return out
}

// Equal reports whether two records hold the same id, poster, assets and pointers.
func (r Record) Equal(other Record) bool {
	return r.ID == other.ID &&
		r.Poster == other.Poster &&
		slices.Equal(r.Collection.Assets, other.Collection.Assets) &&
		indexEqual(r.Collection.CoverIndex, other.Collection.CoverIndex) &&
		indexEqual(r.Collection.LogoIndex, other.Collection.LogoIndex)
}

// Index returns a pointer to a copy of i, for building records in literals.
func Index(i int) *int {
	return &i
}

func cloneIndex(p *int) *int {
	if p == nil {
		return nil
	}
	return Index(*p)
}

func indexEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func inBounds(p *int, length int) bool {
	return p != nil && *p >= 0 && *p < length
}
