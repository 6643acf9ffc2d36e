package media

// GalleryItem is a read-only presentation row for one asset.
type GalleryItem struct {
	URL     string `json:"url"`
	Index   int    `json:"index"`
	IsCover bool   `json:"isCover"`
	IsLogo  bool   `json:"isLogo"`
}

// GalleryView projects the collection into presentation rows. The role flags
// come from explicit pointers only; the default-to-first cover used by Cover is
// not reflected here.
func GalleryView(r Record) []GalleryItem {
	n := r.Len()
	items := make([]GalleryItem, 0, n)
	for i, url := range r.Collection.Assets {
		items = append(items, GalleryItem{
			URL:     url,
			Index:   i,
			IsCover: inBounds(r.Collection.CoverIndex, n) && *r.Collection.CoverIndex == i,
			IsLogo:  inBounds(r.Collection.LogoIndex, n) && *r.Collection.LogoIndex == i,
		})
	}
	return items
}
