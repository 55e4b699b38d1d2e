package doc

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
)

// Patch applies an RFC 6902 JSON patch and returns the patched copy.
// The input node is left untouched. Object key order is not preserved.
func (c Coercer) Patch(n *Node, patch []byte) (*Node, error) {
	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}

	original, err := c.Marshal(n)
	if err != nil {
		return nil, err
	}

	patched, err := ops.Apply(original)
	if err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}
	return c.Unmarshal(patched)
}

// MergePatch applies an RFC 7386 merge patch and returns the merged copy.
func (c Coercer) MergePatch(n *Node, patch []byte) (*Node, error) {
	original, err := c.Marshal(n)
	if err != nil {
		return nil, err
	}

	merged, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return nil, fmt.Errorf("apply merge patch: %w", err)
	}
	return c.Unmarshal(merged)
}
