package level

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema reflects the level file format into a JSON Schema document for
// editor integration and CI validation of authored levels.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(Definition))
	schema.Title = "Gridchase Level"
	schema.Description = "Authored maze, agent placements and gameplay rules consumed by the gridchase server."

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("level: marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}
