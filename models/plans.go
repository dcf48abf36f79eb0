package models

// CreditFee is charged for every applied transformation.
const CreditFee = -1

type Plan struct {
	ID         int         `json:"_id"`
	Name       string      `json:"name"`
	Icon       string      `json:"icon"`
	Price      float64     `json:"price"`
	Credits    int         `json:"credits"`
	Inclusions []Inclusion `json:"inclusions"`
}

type Inclusion struct {
	Label      string `json:"label"`
	IsIncluded bool   `json:"isIncluded"`
}

var Plans = []Plan{
	{
		ID:      1,
		Name:    "Free",
		Icon:    "/assets/icons/free-plan.svg",
		Price:   0,
		Credits: 20,
		Inclusions: []Inclusion{
			{Label: "20 Free Credits", IsIncluded: true},
			{Label: "Basic Access to Services", IsIncluded: true},
			{Label: "Priority Customer Support", IsIncluded: false},
			{Label: "Priority Updates", IsIncluded: false},
		},
	},
	{
		ID:      2,
		Name:    "Pro Package",
		Icon:    "/assets/icons/free-plan.svg",
		Price:   40,
		Credits: 120,
		Inclusions: []Inclusion{
			{Label: "120 Credits", IsIncluded: true},
			{Label: "Full Access to Services", IsIncluded: true},
			{Label: "Priority Customer Support", IsIncluded: true},
			{Label: "Priority Updates", IsIncluded: false},
		},
	},
	{
		ID:      3,
		Name:    "Premium Package",
		Icon:    "/assets/icons/free-plan.svg",
		Price:   199,
		Credits: 2000,
		Inclusions: []Inclusion{
			{Label: "2000 Credits", IsIncluded: true},
			{Label: "Full Access to Services", IsIncluded: true},
			{Label: "Priority Customer Support", IsIncluded: true},
			{Label: "Priority Updates", IsIncluded: true},
		},
	},
}

// PlanByName returns the catalogue entry with the given name.
func PlanByName(name string) (Plan, bool) {
	for _, p := range Plans {
		if p.Name == name {
			return p, true
		}
	}
	return Plan{}, false
}
