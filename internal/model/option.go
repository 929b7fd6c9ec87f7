package model

type OptionCategory string

const (
	OptionCategoryConsultantSpecialty OptionCategory = "consultant_specialty"
	OptionCategoryClientType          OptionCategory = "client_type"
	OptionCategoryConsultStatus       OptionCategory = "consult_status"
)

func (c OptionCategory) Valid() bool {
	switch c {
	case OptionCategoryConsultantSpecialty, OptionCategoryClientType, OptionCategoryConsultStatus:
		return true
	}
	return false
}

type SelectOption struct {
	Base
	Category  OptionCategory `json:"category" db:"category"`
	Value     string         `json:"value" db:"value"`
	Label     string         `json:"label" db:"label"`
	SortOrder int            `json:"sortOrder" db:"sort_order"`
	Active    bool           `json:"active" db:"active"`
}
