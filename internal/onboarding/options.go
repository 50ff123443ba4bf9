package onboarding

type BusinessType string

const (
	BusinessTypeUnset BusinessType = ""
	Dropshipper       BusinessType = "dropshipper"
	Branded           BusinessType = "branded"
)

func (b BusinessType) Valid() bool {
	return b == Dropshipper || b == Branded
}

type Focus string

const (
	FocusProducts   Focus = "products"
	FocusTrends     Focus = "trends"
	FocusCategories Focus = "categories"
)

func (f Focus) Valid() bool {
	for _, o := range FocusOptions {
		if o.ID == f {
			return true
		}
	}
	return false
}

type FocusOption struct {
	ID          Focus  `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var FocusOptions = []FocusOption{
	{
		ID:          FocusProducts,
		Label:       "Find new products",
		Description: "Discover trending and profitable products to sell",
	},
	{
		ID:          FocusTrends,
		Label:       "Find new trends",
		Description: "Stay ahead with emerging market trends",
	},
	{
		ID:          FocusCategories,
		Label:       "Find new categories related to your field of focus",
		Description: "Explore adjacent categories and niches",
	},
}

var Industries = []string{
	"Fashion & Apparel",
	"Electronics & Tech",
	"Home & Garden",
	"Health & Beauty",
	"Sports & Fitness",
	"Automotive",
	"Baby & Kids",
	"Pet Supplies",
	"Jewelry & Accessories",
	"Books & Media",
	"Food & Beverages",
	"Arts & Crafts",
	"Travel & Luggage",
	"Office Supplies",
	"Tools & Hardware",
}

func IsIndustry(s string) bool {
	for _, i := range Industries {
		if i == s {
			return true
		}
	}
	return false
}
