package cache

// ArtifactKeyOpts are the render options that change the artifact bytes.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key for an artifact rendered from the chart
	// description with the given hash.
	ArtifactKey(optionHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a keyer without a prefix.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns "artifact:<sha256(optionHash, opts)>".
func (DefaultKeyer) ArtifactKey(optionHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", optionHash, opts)
}
