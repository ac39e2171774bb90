package codec

// Registry maps every supported Format to its Codec. It is built once and
// never mutated, so it can be shared freely.
type Registry struct {
	codecs map[Format]Codec
}

// NewRegistry returns a registry holding one codec per supported format
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[Format]Codec, len(Formats()))}
	for _, c := range []Codec{&JSON{}, &YAML{}, &TOML{}, &XML{}, &OpenAPI{}} {
		r.codecs[c.Format()] = c
	}
	return r
}

// Get returns the codec for the given format
func (r *Registry) Get(f Format) (Codec, error) {
	c, ok := r.codecs[f]
	if !ok {
		return nil, ErrUnknownFormat
	}
	return c, nil
}

// Lookup resolves a format name and returns its codec
func (r *Registry) Lookup(name string) (Codec, error) {
	f, err := ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return r.Get(f)
}
