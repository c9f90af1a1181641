package harness

// NormalizeExamples guarantees at least one example. An empty set becomes a
// single empty string.
func NormalizeExamples(set ExampleSet) ExampleSet {
	if len(set) == 0 {
		return ExampleSet{{}}
	}

	return set
}

// NormalizeConfig clamps both thresholds to at least 1. Nothing else changes.
func NormalizeConfig(cfg EngineConfig) EngineConfig {
	cfg.MinimumRepetitions = max(cfg.MinimumRepetitions, 1)
	cfg.MinimumSubstringLength = max(cfg.MinimumSubstringLength, 1)

	return cfg
}

// NormalizeBuilderCalls clamps present threshold arguments to at least 1.
// Absent calls stay absent. The input is not modified.
func NormalizeBuilderCalls(calls BuilderCalls) BuilderCalls {
	if calls == nil {
		return nil
	}

	out := make(BuilderCalls, len(calls))

	for i, c := range calls {
		if c.Arg != nil {
			v := *c.Arg
			if methodTable[c.Method].arg == argUint32 {
				v = max(v, 1)
			}

			c.Arg = &v
		}

		out[i] = c
	}

	return out
}
