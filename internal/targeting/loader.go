package targeting

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// ruleDocument is the on-disk and S3 representation of a rule set.
type ruleDocument struct {
	Version string `json:"version"`
	Rules   []Rule `json:"rules"`
}

// Parse decodes a rule document and builds a validated rule set.
func Parse(data []byte) (*RuleSet, error) {
	var doc ruleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("decode rules: missing version")
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("decode rules: empty rule list")
	}
	return NewRuleSet(doc.Version, doc.Rules)
}

// LoadFile reads a rule document from the local filesystem.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(data)
}

// ObjectReader fetches a raw object by key. The S3 store satisfies it.
type ObjectReader interface {
	ReadObject(ctx context.Context, key string) ([]byte, error)
}

// LoadObject reads a rule document from remote object storage.
func LoadObject(ctx context.Context, r ObjectReader, key string) (*RuleSet, error) {
	data, err := r.ReadObject(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read rules object %q: %w", key, err)
	}
	return Parse(data)
}
