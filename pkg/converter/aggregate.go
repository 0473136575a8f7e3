package converter

import (
	"encoding/json"
	"fmt"

	"github.com/plantops/assetmodeler/pkg/apperrors"
	"github.com/plantops/assetmodeler/pkg/models"
)

// MergeBirthData deep-merges an ordered batch of partial birth trees
// into a single tree. Nested mappings merge recursively and member
// lists merge by tag name, so a hierarchy split across multiple birth
// messages arrives whole. On any other conflict the later payload wins,
// which makes re-delivered messages overwrite themselves.
func MergeBirthData(payloads []map[string]any) map[string]any {
	merged := map[string]any{}
	for _, payload := range payloads {
		merged = mergeTree(merged, payload)
	}
	return merged
}

func mergeTree(base, update map[string]any) map[string]any {
	for key, value := range update {
		base[key] = mergeValue(base[key], value)
	}
	return base
}

func mergeValue(base, update any) any {
	switch typed := update.(type) {
	case map[string]any:
		baseMap, _ := base.(map[string]any)
		if baseMap == nil {
			baseMap = map[string]any{}
		}
		return mergeTree(baseMap, typed)
	case []any:
		if baseList, ok := base.([]any); ok {
			if merged, ok := mergeNamedList(baseList, typed); ok {
				return merged
			}
		}
		return typed
	default:
		return update
	}
}

// mergeNamedList merges two member lists keyed by their "name" field:
// entries sharing a name merge recursively (later wins within), new
// names append in arrival order. Lists whose elements are not all named
// mappings report !ok and are replaced wholesale by the caller.
func mergeNamedList(base, update []any) ([]any, bool) {
	index := make(map[string]int, len(base))
	for i, element := range base {
		name, ok := memberName(element)
		if !ok {
			return nil, false
		}
		index[name] = i
	}

	merged := append([]any{}, base...)
	for _, element := range update {
		name, ok := memberName(element)
		if !ok {
			return nil, false
		}
		if i, exists := index[name]; exists {
			merged[i] = mergeValue(merged[i], element)
			continue
		}
		index[name] = len(merged)
		merged = append(merged, element)
	}

	return merged, true
}

func memberName(element any) (string, bool) {
	member, ok := element.(map[string]any)
	if !ok {
		return "", false
	}
	name, ok := member["name"].(string)
	return name, ok
}

// Partition splits the merged tree's member list into the UDT type
// registry and the asset-group roots. Members named by the reserved
// _types_ sentinel contribute their UdtType children to the registry;
// every other member becomes a root unless blacklisted.
func Partition(merged map[string]any, blacklist []string) (map[string]models.TypeDefinition, []models.BirthTag, error) {
	rawTags, ok := merged["tags"]
	if !ok {
		return nil, nil, apperrors.ErrMalformedBirth
	}

	tags, err := decodeTags(rawTags)
	if err != nil {
		return nil, nil, err
	}

	blocked := make(map[string]struct{}, len(blacklist))
	for _, name := range blacklist {
		blocked[name] = struct{}{}
	}

	types := map[string]models.TypeDefinition{}
	var roots []models.BirthTag

	for _, record := range tags {
		if _, skip := blocked[record.Name]; skip {
			continue
		}

		if record.Name == models.TypesContainerName {
			for _, typeTag := range record.Tags {
				if typeTag.TagType == models.TagTypeUDTType {
					types[typeTag.Name] = models.TypeDefinition{
						Name:    typeTag.Name,
						Metrics: typeTag.Tags,
					}
				}
			}
			continue
		}

		roots = append(roots, record)
	}

	return types, roots, nil
}

// decodeTags round-trips the merged member list through JSON into the
// typed tag tree. Fields outside the declared shape are dropped here,
// which is all the schema validation the converter performs.
func decodeTags(raw any) ([]models.BirthTag, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged tags: %w", err)
	}

	var tags []models.BirthTag
	if err := json.Unmarshal(encoded, &tags); err != nil {
		return nil, fmt.Errorf("failed to decode merged tags: %w", err)
	}
	return tags, nil
}
