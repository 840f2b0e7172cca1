package codec

import (
	"fmt"
	"slices"
	"sync"

	"golang.org/x/exp/maps"
)

// Codec converts text to a token stream and back. Implementations hold no
// mutable state and are safe for concurrent use.
type Codec interface {
	Encode(string) (string, error)
	Decode(string) (string, error)
}

// Info describes a registered codec.
type Info struct {
	Name        string
	Base        int
	Alphabet    []string
	Description string
}

type entry struct {
	info  Info
	codec Codec
}

var (
	mu     sync.RWMutex
	codecs = make(map[string]entry)
)

// Register registers a codec under info.Name
func Register(info Info, c Codec) {
	mu.Lock()
	defer mu.Unlock()

	if _, ok := codecs[info.Name]; ok {
		panic("codec: codec already registered")
	}

	codecs[info.Name] = entry{info: info, codec: c}
}

// Get returns the codec registered under name.
func Get(name string) (Codec, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownCodec, name)
	}

	return e.codec, nil
}

// Describe returns the Info registered for name.
func Describe(name string) (Info, bool) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := codecs[name]
	return e.info, ok
}

// Names returns the registered codec names in lexical order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := maps.Keys(codecs)
	slices.Sort(names)
	return names
}

// List returns the Info of every registered codec ordered by name.
func List() []Info {
	names := Names()

	mu.RLock()
	defer mu.RUnlock()

	infos := make([]Info, 0, len(names))
	for _, name := range names {
		if e, ok := codecs[name]; ok {
			infos = append(infos, e.info)
		}
	}

	return infos
}
