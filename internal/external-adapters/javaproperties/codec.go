// Package javaproperties registers a Java .properties codec with viper.
// Viper no longer ships one, and Flutter writes its SDK versions to
// android/local.properties.
package javaproperties

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/magiconair/properties"
	"github.com/spf13/viper"
)

// Extensions are the file extensions decoded as Java properties
var Extensions = []string{"properties", "props", "prop"}

// Codec decodes dotted property keys into nested maps and back
type Codec struct{}

// Decode implements viper.Decoder. flutter.minSdkVersion=21 becomes
// {"flutter": {"minsdkversion": "21"}}.
func (Codec) Decode(b []byte, v map[string]any) error {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(b)
	if err != nil {
		return fmt.Errorf("failed to parse properties: %w", err)
	}

	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		path := strings.Split(strings.ToLower(key), ".")
		parent := v
		for _, segment := range path[:len(path)-1] {
			child, ok := parent[segment].(map[string]any)
			if !ok {
				child = map[string]any{}
				parent[segment] = child
			}
			parent = child
		}
		parent[path[len(path)-1]] = value
	}
	return nil
}

// Encode implements viper.Encoder
func (Codec) Encode(v map[string]any) ([]byte, error) {
	flat := map[string]string{}
	flatten("", v, flat)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := properties.NewProperties()
	p.DisableExpansion = true
	for _, k := range keys {
		if _, _, err := p.Set(k, flat[k]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := p.Write(&buf, properties.UTF8); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, value := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := value.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = fmt.Sprint(value)
	}
}

// Registry returns viper's default codecs plus the properties codec
func Registry() *viper.DefaultCodecRegistry {
	r := viper.NewCodecRegistry()
	for _, ext := range Extensions {
		//nolint:errcheck // DefaultCodecRegistry never fails to register
		r.RegisterCodec(ext, Codec{})
	}
	return r
}

// NewViper returns a viper instance that can read .properties files
func NewViper() *viper.Viper {
	return viper.NewWithOptions(viper.WithCodecRegistry(Registry()))
}
