package syncfile

import (
	"encoding/json"

	"github.com/goccy/go-yaml"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec defines the on-disk representation of the content.
type Codec interface {
	Marshal(v map[string]any) ([]byte, error)
	Unmarshal(data []byte) (map[string]any, error)
}

// JSONCodec is the default codec: compact JSON.
type JSONCodec struct{}

func (JSONCodec) Marshal(v map[string]any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// YAMLCodec stores the content as YAML.
type YAMLCodec struct{}

func (YAMLCodec) Marshal(v map[string]any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (YAMLCodec) Unmarshal(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// MsgpackCodec stores the content as MessagePack. Useful when the file is
// machine-consumed and size matters more than readability.
type MsgpackCodec struct{}

func (MsgpackCodec) Marshal(v map[string]any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackCodec) Unmarshal(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
