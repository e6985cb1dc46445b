package domain

// CategoryOther is returned by the classifier when nothing fits.
const CategoryOther = "Other"

// CategoryAll is the filter value meaning "no category filter".
const CategoryAll = "All"

var categories = []string{
	"Teacher",
	"Doctor",
	"Carpenter",
	"Plumber",
	"Electrician",
	"Barber",
	"Home Caretaker",
	"Cook/Chef",
	"Grocery Seller",
	"Mechanic",
	"Sweeper",
	"Painter",
	"Gardener",
}

// Categories returns the fixed service categories in display order.
func Categories() []string {
	return append([]string(nil), categories...)
}

// IsCategory reports whether name is one of the fixed categories.
func IsCategory(name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}
