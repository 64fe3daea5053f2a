package constant

const (
	PlanMini     = "mini"
	PlanStandard = "standard"
	PlanPremium  = "premium"
)

type PlanDefinition struct {
	Slug        string
	Name        string
	MaxMessages int
}

// PlanCatalog lists the purchasable plans and the message allowance each one
// grants per billing period.
var PlanCatalog = []PlanDefinition{
	{Slug: PlanMini, Name: "Mini", MaxMessages: 50},
	{Slug: PlanStandard, Name: "Standard", MaxMessages: 300},
	{Slug: PlanPremium, Name: "Premium", MaxMessages: 1000},
}

func FindPlan(slug string) (PlanDefinition, bool) {
	for _, p := range PlanCatalog {
		if p.Slug == slug {
			return p, true
		}
	}
	return PlanDefinition{}, false
}
