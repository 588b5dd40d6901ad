package models

import (
	"encoding/json"
	"fmt"
)

// scanJSON decodes a text/json column into dst. Drivers hand back either
// []byte or string depending on the column type.
func scanJSON(value interface{}, dst interface{}, name string) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("failed to scan %s: unexpected type %T", name, value)
	}
}
