package capture

import (
	"encoding/json"
	"strings"
	"sync"

	_ "embed"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/snapshot-v1.json
var snapshotSchemaJSON string

var (
	snapshotSchemaOnce sync.Once
	snapshotSchema     *jsonschema.Schema
	snapshotSchemaErr  error
)

func compileSnapshotSchema() (*jsonschema.Schema, error) {
	snapshotSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("snapshot-v1.json",
			strings.NewReader(snapshotSchemaJSON)); err != nil {
			snapshotSchemaErr = errors.Wrap(err, "add snapshot schema resource")
			return
		}
		snapshotSchema, snapshotSchemaErr = compiler.Compile("snapshot-v1.json")
	})
	return snapshotSchema, snapshotSchemaErr
}

// EncodeSnapshot serializes the registry's PLC list for transport. The child
// side of the pipe writes exactly this encoding.
func EncodeSnapshot(registry *Registry) ([]byte, error) {
	data, err := json.Marshal(registry.PLCs())
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return data, nil
}

// DecodeSnapshot validates a transport payload against the snapshot schema
// and returns the captured PLCs. A payload that fails validation is a
// transport error for the whole message, never a partial merge.
func DecodeSnapshot(data []byte) ([]*PLC, error) {
	schema, err := compileSnapshotSchema()
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, errors.Wrap(err, "snapshot is not valid JSON")
	}
	if err := schema.Validate(generic); err != nil {
		return nil, errors.Wrap(err, "snapshot schema validation failed")
	}
	var plcs []*PLC
	if err := json.Unmarshal(data, &plcs); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return plcs, nil
}
