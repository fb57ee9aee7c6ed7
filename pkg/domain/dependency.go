package domain

// AnswerView is the read side of the answer store, the minimum IsReady needs.
type AnswerView interface {
	Get(key string) (string, bool)
}

// Dependency gates a mission on the answer store.
// Without MatchValue the key only has to exist; with it the stored value must equal Value.
type Dependency struct {
	StoreKey   string `json:"storeKey"`
	Value      string `json:"value,omitempty"`
	MatchValue bool   `json:"-"`
}

// Requires builds a "key must exist" dependency.
func Requires(key string) Dependency {
	return Dependency{StoreKey: key}
}

// RequiresValue builds a "key must equal value" dependency.
func RequiresValue(key, value string) Dependency {
	return Dependency{StoreKey: key, Value: value, MatchValue: true}
}

// SatisfiedBy evaluates the dependency against a snapshot of answers.
func (d Dependency) SatisfiedBy(answers AnswerView) bool {
	if answers == nil {
		return false
	}
	got, ok := answers.Get(d.StoreKey)
	if !ok {
		return false
	}
	if d.MatchValue {
		return got == d.Value
	}
	return true
}

func (d Dependency) String() string {
	if d.MatchValue {
		return d.StoreKey + "=" + d.Value
	}
	return d.StoreKey
}
