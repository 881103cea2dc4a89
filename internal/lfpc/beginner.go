package lfpc

// BeginnerTargets maps each of the eight hand configurations to the consonant
// keys accepted for it in beginner drills.
var BeginnerTargets = map[int][]string{
	1: {"P", "D", "J"},
	2: {"K", "V", "Z"},
	3: {"S", "R"},
	4: {"B", "N"},
	5: {"M", "T", "F"},
	6: {"L", "CH", "GN", "W"},
	7: {"G"},
	8: {"Y", "NG"},
}

// AcceptableKeys returns a copy of the keys accepted for a configuration number.
func AcceptableKeys(configuration int) []string {
	keys, ok := BeginnerTargets[configuration]
	if !ok {
		return nil
	}
	return append([]string(nil), keys...)
}

// HandConfigurationConfidence is the beginner-mode score: the estimator's own
// confidence when the detected key is literally one of the acceptable keys,
// otherwise 0. There is no group credit on this path.
func HandConfigurationConfidence(est ConfigurationEstimate, acceptable []string) int {
	if est.Key == "" {
		return 0
	}
	for _, k := range acceptable {
		if k == est.Key {
			return est.Confidence
		}
	}
	return 0
}
