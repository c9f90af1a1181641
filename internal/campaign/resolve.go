package campaign

import (
	"fmt"
	"sort"

	"github.com/calvinalkan/rexfuzz/internal/harness"
)

// Resolve applies the variant overrides in cfg to the built-in variants.
func Resolve(cfg Config) ([]harness.Variant, error) {
	variants := harness.Variants()

	names := make([]string, 0, len(cfg.Variants))
	for name := range cfg.Variants {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		idx := -1

		for i, v := range variants {
			if v.Name == name {
				idx = i

				break
			}
		}

		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
		}

		v, err := applyOverride(variants[idx], cfg.Variants[name])
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", name, err)
		}

		variants[idx] = v
	}

	return variants, nil
}

func applyOverride(v harness.Variant, o VariantOverride) (harness.Variant, error) {
	if o.Policy != "" {
		p, err := harness.ParsePolicy(o.Policy)
		if err != nil {
			return harness.Variant{}, err
		}

		v.Policy = p
	}

	if o.Count != nil {
		v.Limits.Count = *o.Count
	}

	if o.Length != nil {
		v.Limits.Length = *o.Length
	}

	if o.Disable != nil {
		disabled, err := harness.ParseFeatureSet(*o.Disable)
		if err != nil {
			return harness.Variant{}, err
		}

		v.Disabled = disabled
	}

	if v.Policy.Bounded() && (v.Limits.Count <= 0 || v.Limits.Length <= 0) {
		return harness.Variant{}, fmt.Errorf("%w, got count=%d length=%d", ErrInvalidLimits, v.Limits.Count, v.Limits.Length)
	}

	return v, nil
}
