package ocr

// InputOption mutates an Input before it is handed to an engine.
type InputOption func(*Input)

// WithID sets the caller-provided identifier echoed back in attempts.
func WithID(id string) InputOption {
	return func(in *Input) { in.ID = id }
}

// WithProfile sets the language profile.
func WithProfile(p Profile) InputOption {
	return func(in *Input) { in.Profile = p }
}

// WithPageSegMode sets the layout hint.
func WithPageSegMode(m PageSegMode) InputOption {
	return func(in *Input) { in.PageSegMode = m }
}

// WithWhitelist restricts recognition to the provided characters.
func WithWhitelist(chars string) InputOption {
	return func(in *Input) { in.Whitelist = chars }
}

// NewInput builds an Input for the given encoded image.
func NewInput(image []byte, opts ...InputOption) Input {
	in := Input{Image: image, Profile: ProfileJapanese, PageSegMode: PSMSingleLine}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}
