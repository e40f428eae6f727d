// Package serialization renders job parameters for logs and history with
// sensitive values masked.
package serialization

import (
	"encoding/json"
	"strings"

	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// Mask replaces a sensitive value.
const Mask = "********"

// MaskParameters returns a copy of params in which every key containing one
// of maskedKeys (case-insensitive) has its value replaced by Mask.
func MaskParameters(params map[string]interface{}, maskedKeys []string) map[string]interface{} {
	masked := make(map[string]interface{}, len(params))
	for k, v := range params {
		if isSensitive(k, maskedKeys) {
			masked[k] = Mask
			continue
		}
		masked[k] = v
	}
	return masked
}

func isSensitive(key string, maskedKeys []string) bool {
	lower := strings.ToLower(key)
	for _, m := range maskedKeys {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// MarshalParameters serializes params as a JSON object after masking.
// A nil or empty map yields "{}".
func MarshalParameters(params map[string]interface{}, maskedKeys []string) ([]byte, error) {
	if len(params) == 0 {
		logger.Debugf("No job parameters to serialize.")
		return []byte("{}"), nil
	}
	data, err := json.Marshal(MaskParameters(params, maskedKeys))
	if err != nil {
		return nil, exception.NewBatchError("serialization", "Failed to serialize job parameters", err, false, false)
	}
	return data, nil
}
