package openai

///////////////////////////////////////////////////////////////////////////////
// TYPES

// A generic option type, which can set options on a request
type Opt func(*Opts) error

// set of applied options
type Opts struct {
	headers  map[string]string
	filename string
	callback func(*ChatResponse)
	options  map[string]any
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// option keys
const (
	keyModel          = "model"
	keyUser           = "user"
	keyTemperature    = "temperature"
	keyTopP           = "top_p"
	keyMaxTokens      = "max_tokens"
	keyStop           = "stop"
	keySeed           = "seed"
	keyDimensions     = "dimensions"
	keyEncodingFormat = "encoding_format"
	keyAudioFormat    = "audio_format"
	keySpeed          = "speed"
	keyLanguage       = "language"
	keyPrompt         = "prompt"
	keyResponseFormat = "response_format"
	keyGranularities  = "timestamp_granularities"
	keyInclude        = "include"
	keyChunking       = "chunking_strategy"
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// ApplyOpts returns a structure of applied options
func ApplyOpts(opts ...Opt) (*Opts, error) {
	o := &Opts{
		headers: make(map[string]string),
		options: make(map[string]any),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Has returns true when the key has been set
func (o *Opts) Has(key string) bool {
	_, ok := o.options[key]
	return ok
}

// Get returns the value for key, or nil
func (o *Opts) Get(key string) any {
	return o.options[key]
}

// GetString returns the string value for key, or empty
func (o *Opts) GetString(key string) string {
	if v, ok := o.options[key].(string); ok {
		return v
	}
	return ""
}

// GetFloat64 returns the float64 value for key, or zero
func (o *Opts) GetFloat64(key string) float64 {
	if v, ok := o.options[key].(float64); ok {
		return v
	}
	return 0
}

// GetUint64 returns the uint64 value for key, or zero
func (o *Opts) GetUint64(key string) uint64 {
	if v, ok := o.options[key].(uint64); ok {
		return v
	}
	return 0
}

// GetStringSlice returns the string slice value for key, or nil
func (o *Opts) GetStringSlice(key string) []string {
	if v, ok := o.options[key].([]string); ok {
		return v
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithHeader sets a header for this call only. The header is applied
// through a derived transport and does not affect other calls made
// through the same client.
func WithHeader(key, value string) Opt {
	return func(o *Opts) error {
		o.headers[key] = value
		return nil
	}
}

// WithModel sets the model, for endpoints where it is optional
func WithModel(v string) Opt {
	return func(o *Opts) error {
		o.options[keyModel] = v
		return nil
	}
}

// WithUser sets the end-user identifier
func WithUser(v string) Opt {
	return func(o *Opts) error {
		o.options[keyUser] = v
		return nil
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(v float64) Opt {
	return func(o *Opts) error {
		if v < 0 || v > 2 {
			return ErrBadParameter.With("temperature must be between 0 and 2")
		}
		o.options[keyTemperature] = v
		return nil
	}
}

// WithTopP sets the nucleus sampling probability mass
func WithTopP(v float64) Opt {
	return func(o *Opts) error {
		if v < 0 || v > 1 {
			return ErrBadParameter.With("top_p must be between 0 and 1")
		}
		o.options[keyTopP] = v
		return nil
	}
}

// WithMaxTokens sets the maximum number of generated tokens
func WithMaxTokens(v uint64) Opt {
	return func(o *Opts) error {
		o.options[keyMaxTokens] = v
		return nil
	}
}

// WithStop sets stop sequences
func WithStop(v ...string) Opt {
	return func(o *Opts) error {
		o.options[keyStop] = v
		return nil
	}
}

// WithSeed sets the sampling seed
func WithSeed(v uint64) Opt {
	return func(o *Opts) error {
		o.options[keySeed] = v
		return nil
	}
}

// WithDimensions sets the number of dimensions for embedding vectors
func WithDimensions(v uint64) Opt {
	return func(o *Opts) error {
		o.options[keyDimensions] = v
		return nil
	}
}

// WithEncodingFormat sets the embedding encoding format
func WithEncodingFormat(v string) Opt {
	return func(o *Opts) error {
		o.options[keyEncodingFormat] = v
		return nil
	}
}

// WithAudioFormat sets the audio output format for speech synthesis
func WithAudioFormat(v string) Opt {
	return func(o *Opts) error {
		o.options[keyAudioFormat] = v
		return nil
	}
}

// WithSpeed sets the speech synthesis speed
func WithSpeed(v float64) Opt {
	return func(o *Opts) error {
		o.options[keySpeed] = v
		return nil
	}
}

// WithLanguage sets the input audio language for transcription
func WithLanguage(v string) Opt {
	return func(o *Opts) error {
		o.options[keyLanguage] = v
		return nil
	}
}

// WithPrompt sets the transcription prompt
func WithPrompt(v string) Opt {
	return func(o *Opts) error {
		o.options[keyPrompt] = v
		return nil
	}
}

// WithResponseFormat sets the response format
func WithResponseFormat(v string) Opt {
	return func(o *Opts) error {
		o.options[keyResponseFormat] = v
		return nil
	}
}

// WithTimestampGranularities sets the transcription timestamp
// granularities
func WithTimestampGranularities(v ...string) Opt {
	return func(o *Opts) error {
		o.options[keyGranularities] = v
		return nil
	}
}

// WithInclude sets additional transcription output to include
func WithInclude(v ...string) Opt {
	return func(o *Opts) error {
		o.options[keyInclude] = v
		return nil
	}
}

// WithChunkingStrategy sets the transcription chunking strategy, either
// a string or an object which is JSON-serialized
func WithChunkingStrategy(v any) Opt {
	return func(o *Opts) error {
		o.options[keyChunking] = v
		return nil
	}
}

// WithFilename sets the filename reported for file uploads which carry
// no name of their own
func WithFilename(v string) Opt {
	return func(o *Opts) error {
		o.filename = v
		return nil
	}
}

// WithStreamCallback streams the response, invoking fn once per chunk
// as it arrives. The call returns the final accumulated response.
func WithStreamCallback(fn func(*ChatResponse)) Opt {
	return func(o *Opts) error {
		o.callback = fn
		return nil
	}
}
