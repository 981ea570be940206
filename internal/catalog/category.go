package catalog

// Category groups standard rules for rollup scoring.
type Category string

const (
	CategoryLogic         Category = "logic"
	CategoryDuration      Category = "duration"
	CategoryConstraints   Category = "constraints"
	CategoryFloat         Category = "float"
	CategoryStatus        Category = "status"
	CategoryRelationships Category = "relationships"
)

// categories is the closed set in rollup order.
var categories = []Category{
	CategoryLogic,
	CategoryDuration,
	CategoryConstraints,
	CategoryFloat,
	CategoryStatus,
	CategoryRelationships,
}

// Categories returns every category in rollup order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// IsValid returns true if the category is a known value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryLogic, CategoryDuration, CategoryConstraints,
		CategoryFloat, CategoryStatus, CategoryRelationships:
		return true
	default:
		return false
	}
}

// Family distinguishes the fixed standard rule set from organization rules.
type Family string

const (
	FamilyStandard Family = "standard"
	FamilyCustom   Family = "custom"
)
