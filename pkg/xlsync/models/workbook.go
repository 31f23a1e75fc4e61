package models

// DocProperties holds workbook-level metadata written on save.
// Empty fields leave the existing value untouched.
type DocProperties struct {
	Title       string `json:"title,omitempty" yaml:"title" mapstructure:"title"`
	Subject     string `json:"subject,omitempty" yaml:"subject" mapstructure:"subject"`
	Creator     string `json:"creator,omitempty" yaml:"creator" mapstructure:"creator"`
	Keywords    string `json:"keywords,omitempty" yaml:"keywords" mapstructure:"keywords"`
	Description string `json:"description,omitempty" yaml:"description" mapstructure:"description"`
	Category    string `json:"category,omitempty" yaml:"category" mapstructure:"category"`
	Language    string `json:"language,omitempty" yaml:"language" mapstructure:"language"`
}

// IsZero reports whether no property is set.
func (p DocProperties) IsZero() bool {
	return p == DocProperties{}
}
