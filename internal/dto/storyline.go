package dto

// MissionDoc is the authoring form of a mission.
// It uses "mapstructure" tags to match the JSON/YAML keys of storyline documents.
// Nested collections stay untyped so each fragment can be decoded, and defaulted, on its own.
type MissionDoc struct {
	Title       string         `json:"title" mapstructure:"title"`
	Description string         `json:"description" mapstructure:"description"`
	FirstStep   string         `json:"firstStep" mapstructure:"firstStep"`
	Depend      []any          `json:"depend" mapstructure:"depend"`
	Steps       map[string]any `json:"steps" mapstructure:"steps"`
}

// StepDoc is the authoring form of a mission step.
type StepDoc struct {
	Title       string `json:"title" mapstructure:"title"`
	Description string `json:"description" mapstructure:"description"`
	NextStep    string `json:"nextStep" mapstructure:"nextStep"`
	NPCID       string `json:"npcId" mapstructure:"npcId"`
	LocationID  string `json:"locationId" mapstructure:"locationId"`
	MoveTo      string `json:"moveTo" mapstructure:"moveTo"`
	Dialog      []any  `json:"dialog" mapstructure:"dialog"`
}

// ItemDoc is the authoring form of a dialog item. Type selects the variant.
type ItemDoc struct {
	Name     string  `json:"name" mapstructure:"name"`
	Type     string  `json:"type" mapstructure:"type"`
	ID       string  `json:"id" mapstructure:"id"`
	NextLine string  `json:"nextLine" mapstructure:"nextLine"`
	NextStep string  `json:"nextStep" mapstructure:"nextStep"`
	Line     *string `json:"line" mapstructure:"line"`
	Question *string `json:"question" mapstructure:"question"`
	Choices  []any   `json:"choices" mapstructure:"choices"`
	StoreKey string  `json:"storeKey" mapstructure:"storeKey"`
	Message  *string `json:"message" mapstructure:"message"`
	URL      string  `json:"url" mapstructure:"url"`
	Style    string  `json:"style" mapstructure:"style"`
	Callback string  `json:"callback" mapstructure:"callback"`
}

// ChoiceDoc is one option of a select item.
type ChoiceDoc struct {
	Text     string  `json:"text" mapstructure:"text"`
	NextLine string  `json:"nextLine" mapstructure:"nextLine"`
	Value    *string `json:"value" mapstructure:"value"`
}

// DependencyDoc is the object form of a mission dependency.
type DependencyDoc struct {
	StoreKey string  `json:"storeKey" mapstructure:"storeKey"`
	Value    *string `json:"value" mapstructure:"value"`
}
