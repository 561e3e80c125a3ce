package catalog

import "strings"

// equipmentKeywords maps name fragments to equipment, checked in order
// so more specific fragments win over generic ones.
var equipmentKeywords = []struct {
	fragment  string
	equipment string
}{
	{"barbell", "barbell"},
	{"dumbbell", "dumbbell"},
	{"kettlebell", "kettlebell"},
	{"cable", "cable"},
	{"machine", "machine"},
	{"smith", "machine"},
	{"band", "resistance band"},
	{"trx", "trx"},
	{"pull-up", "pull-up bar"},
	{"pullup", "pull-up bar"},
	{"pull up", "pull-up bar"},
	{"chin-up", "pull-up bar"},
	{"chinup", "pull-up bar"},
	{"dip", "dip bars"},
	{"medicine ball", "medicine ball"},
	{"wall ball", "medicine ball"},
	{"box jump", "box"},
	{"bench press", "barbell"},
	{"push-up", "bodyweight"},
	{"pushup", "bodyweight"},
	{"plank", "bodyweight"},
	{"bodyweight", "bodyweight"},
	{"running", "none"},
	{"sprint", "none"},
}

// InferEquipment picks equipment for a new catalog entry: the model's
// claim wins when present, otherwise the exercise name is keyword-matched.
func InferEquipment(name, proposed string) string {
	if p := strings.TrimSpace(proposed); p != "" {
		return strings.ToLower(p)
	}
	lower := strings.ToLower(name)
	for _, kw := range equipmentKeywords {
		if strings.Contains(lower, kw.fragment) {
			return kw.equipment
		}
	}
	return "bodyweight"
}
