package task

import (
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
)

// MergeResult is the outcome of folding one turn's entities into the
// accumulated task data.
type MergeResult struct {
	// Collected is the updated field mapping (input is not mutated).
	Collected map[string]statex.EntityValue
	// Missing lists the still-required fields in declared order.
	Missing []Field
	// Overwrote names the previously collected fields whose value
	// changed this turn; any presented confirmation is invalid then.
	Overwrote []string
	// Leftover holds entity keys that are not required fields for this
	// task. They go to the free-form context bag.
	Leftover map[string]statex.EntityValue
}

// NextMissing returns the first missing field, or nil when the task is
// ready for confirmation.
func (r MergeResult) NextMissing() *Field {
	if len(r.Missing) == 0 {
		return nil
	}
	f := r.Missing[0]
	return &f
}

// Merge folds newly extracted entities into the collected fields for a
// task. Recognized keys overwrite prior values (last write wins per
// turn); unrecognized keys are reported as leftovers. Missing fields
// follow the declared order exactly.
func Merge(def *Definition, collected, entities map[string]statex.EntityValue) MergeResult {
	updated := statex.CloneEntities(collected)
	if updated == nil {
		updated = make(map[string]statex.EntityValue, len(def.Required))
	}

	required := make(map[string]struct{}, len(def.Required))
	for _, f := range def.Required {
		required[f.Name] = struct{}{}
	}

	res := MergeResult{}
	for k, v := range entities {
		if _, ok := required[k]; !ok {
			if res.Leftover == nil {
				res.Leftover = make(map[string]statex.EntityValue, 2)
			}
			res.Leftover[k] = v
			continue
		}
		if prev, ok := updated[k]; ok && !prev.Equal(v) {
			res.Overwrote = append(res.Overwrote, k)
		}
		updated[k] = v
	}

	for _, f := range def.Required {
		if _, ok := updated[f.Name]; !ok {
			res.Missing = append(res.Missing, f)
		}
	}

	res.Collected = updated
	return res
}
