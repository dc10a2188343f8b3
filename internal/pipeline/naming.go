package pipeline

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const defaultExtension = ".png"

// ImageExtension is the extension of the image url's path, or ".png" when
// the path has none.
func ImageExtension(imageURL string) string {
	p := imageURL
	u, err := url.Parse(imageURL)
	if err == nil {
		p = u.Path
	}
	ext := path.Ext(p)
	if ext == "" || ext == "." {
		return defaultExtension
	}
	return ext
}

// percent escapes for the characters a file name cannot hold, "%" itself is
// escaped first so distinct names never collapse into the same key
var nameEscaper = strings.NewReplacer("%", "%25", "/", "%2F", `\`, "%5C")

// AssetName is the file name an entry's image is stored under,
// ex. 0001-Bulbasaur.png, 0001-A%2FB.png for "A/B".
func AssetName(dex int, name, imageURL string) string {
	return fmt.Sprintf(
		"%04d-%s%s",
		dex,
		nameEscaper.Replace(name),
		ImageExtension(imageURL),
	)
}

// DestinationKey places AssetName under `prefix`, an empty prefix means the
// asset name is the key.
func DestinationKey(prefix string, dex int, name, imageURL string) string {
	asset := AssetName(dex, name, imageURL)
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return asset
	}
	return prefix + "/" + asset
}
