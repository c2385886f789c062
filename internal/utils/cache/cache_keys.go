package cache

import "fmt"

type EntityType string

const (
	EntityCardholder EntityType = "cardholder"
	EntityRules      EntityType = "rules"
)

type KeyType string

const (
	KeyAPIKey     KeyType = "key"
	KeyHash       KeyType = "hash"
	KeyGeneration KeyType = "gen"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}

// RulesKey is the cache key of a merchant's ordered rule list as of the
// given generation. Bumping the generation orphans every older entry.
func RulesKey(merchantKey string, generation int64) string {
	return fmt.Sprintf("%s:%d", GenerateKey(EntityRules, KeyAPIKey, merchantKey), generation)
}

// RulesGenerationKey counts rule changes for a merchant.
func RulesGenerationKey(merchantKey string) string {
	return GenerateKey(EntityRules, KeyGeneration, merchantKey)
}

// ChallengeLockKey is the lock key serializing challenge state per cardholder.
func ChallengeLockKey(cchash string) string {
	return GenerateKey(EntityCardholder, KeyHash, cchash) + ":challenge"
}
