package minecraft

import (
	"context"
	"errors"
)

// DescriptorSource locates version descriptors by id
type DescriptorSource interface {
	Descriptor(ctx context.Context, id string) (*Manifest, error)
}

// Resolve follows the inheritance chain of the given version and merges
// it into one complete descriptor. Resolving an already resolved
// descriptor returns it unchanged.
func Resolve(ctx context.Context, id string, source DescriptorSource) (*Manifest, error) {
	manifest, err := source.Descriptor(ctx, id)
	if err != nil {
		return nil, err
	}

	// child first, oldest ancestor last
	chain := []*Manifest{manifest}
	seen := map[string]bool{manifest.ID: true}

	for current := manifest; current.InheritsFrom != ""; {
		parentID := current.InheritsFrom
		if seen[parentID] {
			return nil, &CyclicInheritanceError{ID: parentID}
		}

		parent, err := source.Descriptor(ctx, parentID)
		if err != nil {
			if errors.Is(err, ErrDescriptorNotFound) {
				return nil, &MissingParentError{ID: parentID}
			}
			return nil, err
		}

		seen[parentID] = true
		chain = append(chain, parent)
		current = parent
	}

	// fold from the oldest ancestor down to the requested version
	resolved := chain[len(chain)-1]
	for i := len(chain) - 2; i >= 0; i-- {
		resolved = merged(resolved, chain[i])
	}
	return resolved, nil
}
