package domain

// Kind describes a category of object and its ordered input slots.
type Kind struct {
	Name   string   `json:"name" yaml:"name" mapstructure:"name"`
	Inputs []string `json:"inputs" yaml:"inputs" mapstructure:"inputs"`
}

// IsEngine reports whether k is the terminal sink kind.
func (k Kind) IsEngine() bool {
	return k.Name == EngineKind
}

// HasInput reports whether slot is declared by the kind.
func (k Kind) HasInput(slot string) bool {
	for _, in := range k.Inputs {
		if in == slot {
			return true
		}
	}
	return false
}
