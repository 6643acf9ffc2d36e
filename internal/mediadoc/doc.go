// Package mediadoc translates stored content documents to and from the
// canonical media model.
//
// Three historical encodings of a record's gallery exist in the corpus: the
// canonical list of URL strings with separate coverIndex/logoIndex fields, a
// tagged list of {url, isCover, isLogo} objects, and a mix of both. Normalize
// decodes any of them; Fields encodes the canonical form that is written back.
// Entries that are neither a string nor an object with a usable url are dropped
// and reported as Skips, never as errors.
package mediadoc
