package tmdb

import "strings"

// ImageSize is a TMDB image rendition.
type ImageSize string

const (
	SizeW45      ImageSize = "w45"
	SizeW92      ImageSize = "w92"
	SizeW154     ImageSize = "w154"
	SizeW185     ImageSize = "w185"
	SizeW300     ImageSize = "w300"
	SizeW342     ImageSize = "w342"
	SizeW500     ImageSize = "w500"
	SizeW780     ImageSize = "w780"
	SizeW1280    ImageSize = "w1280"
	SizeH632     ImageSize = "h632"
	SizeOriginal ImageSize = "original"
)

// DefaultImageBaseURL is the public TMDB image host.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p/"

var knownSizes = map[ImageSize]struct{}{
	SizeW45: {}, SizeW92: {}, SizeW154: {}, SizeW185: {}, SizeW300: {}, SizeW342: {},
	SizeW500: {}, SizeW780: {}, SizeW1280: {}, SizeH632: {}, SizeOriginal: {},
}

// ImageSizes lists the supported renditions, smallest first.
func ImageSizes() []ImageSize {
	return []ImageSize{SizeW45, SizeW92, SizeW154, SizeW185, SizeW300, SizeW342, SizeW500, SizeW780, SizeW1280, SizeH632, SizeOriginal}
}

// ParseImageSize normalizes size, mapping blank or unknown values to SizeOriginal.
func ParseImageSize(size string) ImageSize {
	candidate := ImageSize(strings.ToLower(strings.TrimSpace(size)))
	if _, ok := knownSizes[candidate]; ok {
		return candidate
	}
	return SizeOriginal
}

// ImageURL joins the default image host, size, and path.
func ImageURL(path string, size ImageSize) string {
	return BuildImageURL(DefaultImageBaseURL, path, size)
}

// BuildImageURL joins base, size, and path. It performs no I/O.
// path is expected to start with "/" as returned by the catalog.
func BuildImageURL(base, path string, size ImageSize) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + string(ParseImageSize(string(size))) + path
}

// ImageURL builds an image URL against the client's configured image host.
func (c *Client) ImageURL(path string, size ImageSize) string {
	return BuildImageURL(c.imageBaseURL, path, size)
}
