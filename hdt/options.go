package hdt

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/boutros/hdt/internal/dictionary"
)

// Options holds the recognized key/value configuration controlling how
// an HDT is built or loaded, per spec.md §6's config table. Keys not
// in the recognized set are preserved in Extra rather than rejected,
// matching ControlInformation's open key/value bag.
type Options struct {
	DictionaryType string // "PFC" (default), "Plain", "PFCPlus"
	DictBlockSize  int
	TriplesType    string // "Bitmap" (default), "Compact", "Plain", "TriplesList", "TriplesListDisk"
	ComponentOrder string // "SPO" (default) .. "OPS"
	StreamX        string
	StreamY        string
	StreamZ        string
	NoHeader       bool
	Extra          map[string]string
}

// DefaultOptions returns the config table's documented defaults.
func DefaultOptions() *Options {
	return &Options{
		DictionaryType: "PFC",
		DictBlockSize:  dictionary.DefaultBlockSize,
		TriplesType:    "Bitmap",
		ComponentOrder: "SPO",
		Extra:          make(map[string]string),
	}
}

func (o *Options) set(key, value string) {
	switch key {
	case "dictionary.type":
		o.DictionaryType = value
	case "dict.block.size":
		if n, err := strconv.Atoi(value); err == nil {
			o.DictBlockSize = n
		}
	case "triples.type":
		o.TriplesType = value
	case "triples.component.order":
		o.ComponentOrder = value
	case "stream.x":
		o.StreamX = value
	case "stream.y":
		o.StreamY = value
	case "stream.z":
		o.StreamZ = value
	case "noheader":
		o.NoHeader = value == "true" || value == "1"
	default:
		if o.Extra == nil {
			o.Extra = make(map[string]string)
		}
		o.Extra[key] = value
	}
}

// ParseOptions parses the rdf2hdt "-o" inline option string,
// "k1:v1;k2:v2", into an Options starting from the documented
// defaults.
func ParseOptions(s string) (*Options, error) {
	o := DefaultOptions()
	if strings.TrimSpace(s) == "" {
		return o, nil
	}
	for _, pair := range strings.Split(s, ";") {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			return nil, newError(ParseError, "options: malformed option %q", pair)
		}
		o.set(kv[0], kv[1])
	}
	return o, nil
}

// LoadConfigFile parses the rdf2hdt "-c" key=value config file, one
// option per line; blank lines and lines starting with "#" are
// skipped.
func LoadConfigFile(path string) (*Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapError(IOError, err)
	}
	defer f.Close()

	o := DefaultOptions()
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		kv := strings.SplitN(text, "=", 2)
		if len(kv) != 2 {
			return nil, newParseError(line, "options: malformed line %q in %s", text, path)
		}
		o.set(strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1]))
	}
	if err := sc.Err(); err != nil {
		return nil, wrapError(IOError, err)
	}
	return o, nil
}
