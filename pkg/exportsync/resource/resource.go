// Package resource defines the descriptor and manifest types shared by the
// sync pipeline. A descriptor is one `name!hash` pair from the decompressed
// index or from a manifest entry's texture location.
package resource

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrMalformedDescriptor is returned when a line cannot be split into a
// name and a hash. The upstream format guarantees the separator, so callers
// treat this as corrupt input and abort the cycle rather than skip the line;
// skipping would silently desynchronize the ledger.
var ErrMalformedDescriptor = errors.New("malformed resource descriptor")

// Descriptor is a named, content-hashed unit of remote data.
type Descriptor struct {
	Name string
	Hash string
}

// ParseDescriptor splits a line on the first "!" into a Descriptor.
func ParseDescriptor(line string) (Descriptor, error) {
	name, hash, found := strings.Cut(line, "!")
	if !found {
		return Descriptor{}, fmt.Errorf("%w: missing separator in %q", ErrMalformedDescriptor, line)
	}
	if name == "" {
		return Descriptor{}, fmt.Errorf("%w: empty name in %q", ErrMalformedDescriptor, line)
	}
	return Descriptor{Name: name, Hash: hash}, nil
}

// ExportBaseName returns the artifact base name for an export resource:
// the descriptor name with its extension stripped. "ExportWeapons.json"
// becomes "ExportWeapons", so the materializer can emit both
// ExportWeapons.json and ExportWeapons.min.json next to each other.
func ExportBaseName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// TextureFileName flattens a texture's unique name into a single PNG file
// name: the leading slash is dropped and the remaining path separators are
// replaced with dots. "/Lotus/Interface/Icons/Foo" becomes
// "Lotus.Interface.Icons.Foo.png".
func TextureFileName(uniqueName string) string {
	trimmed := strings.TrimPrefix(uniqueName, "/")
	return strings.ReplaceAll(trimmed, "/", ".") + ".png"
}

// ManifestEntry is one texture listed by the export manifest.
// TextureLocation itself encodes a `path!hash` descriptor for the texture.
type ManifestEntry struct {
	TextureLocation string `json:"textureLocation"`
	UniqueName      string `json:"uniqueName"`
}

// Manifest is the export file enumerating every texture resource.
type Manifest struct {
	Manifest []ManifestEntry `json:"Manifest"`
}
