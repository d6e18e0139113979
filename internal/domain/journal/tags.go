package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const maxTagLength = 50

// TagList accepts either a JSON array of tags or one comma separated string.
type TagList []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TagList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*t = nil
		return nil
	}
	switch trimmed[0] {
	case '"':
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		*t = strings.Split(joined, ",")
		return nil
	case '[':
		var many []string
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*t = many
		return nil
	default:
		return errors.New("tags must be a string or an array of strings")
	}
}

// normalizeTags lower-cases, trims, and de-duplicates tags keeping first-seen order.
func normalizeTags(raw []string, maxTags int) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		clean := strings.Join(strings.Fields(strings.ToLower(tag)), " ")
		if clean == "" {
			continue
		}
		if len([]rune(clean)) > maxTagLength {
			return nil, fmt.Errorf("tag %q exceeds %d characters", clean, maxTagLength)
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	if maxTags > 0 && len(out) > maxTags {
		return nil, fmt.Errorf("at most %d tags are allowed", maxTags)
	}
	return out, nil
}
