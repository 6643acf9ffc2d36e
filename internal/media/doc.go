// Package media models the ordered asset collection owned by a content record
// (film, article, partner) and the role pointers that designate its cover and
// logo assets.
//
// Roles are integer positions into the collection rather than per-asset flags.
// Every function in this package is pure: it never mutates its argument and
// always returns a fresh Record, so callers own persisting the result. The
// package also carries the validator that reports broken role pointers and the
// repair policy that fixes them deterministically.
//
// Decoding historical storage shapes into a Record lives in mediadoc; this
// package only ever sees canonical data.
package media
