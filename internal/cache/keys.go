package cache

import "strings"

const (
	GlobalKeyPrefix = "quizforge"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// GenerationKey is where a generated question set is stored.
func GenerationKey(id string) string {
	return GenerateCacheKey("generation", "result", id)
}

// EmbeddingKey is where the embedding of a text is cached. The model is
// part of the key since vectors of different models are not comparable.
func EmbeddingKey(provider, model, textHash string) string {
	return GenerateCacheKey("embedding", provider, textHash, model)
}
