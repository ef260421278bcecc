package sizing

// Category names a metering arrangement a system can apply for.
type Category string

const (
	CategoryNetMetering   Category = "net"
	CategoryGrossMetering Category = "gross"
	CategorySimpleSetup   Category = "simple"
	CategoryIneligible    Category = "ineligible"
)

// Eligibility reports which arrangements a capacity qualifies for. Net and
// gross ranges overlap in [5,50]; the applicant's declared preference breaks
// the tie, not the classifier.
type Eligibility struct {
	CapacityKw    float64
	NetMetering   bool
	GrossMetering bool
	SimpleSetup   bool
}

// Classify applies the fixed eligibility rule to a capacity.
func Classify(capacityKw float64) Eligibility {
	e := Eligibility{CapacityKw: capacityKw}
	if capacityKw >= NetMeteringMinimumKw && capacityKw <= GrossMeteringMaximumKw {
		e.NetMetering = true
	}
	if capacityKw >= GrossMeteringMinimumKw && capacityKw <= GrossMeteringMaximumKw {
		e.GrossMetering = true
	}
	if capacityKw > 0 && capacityKw < GrossMeteringMinimumKw {
		e.SimpleSetup = true
	}
	return e
}

// Ineligible reports whether the capacity qualifies for nothing at all.
func (e Eligibility) Ineligible() bool {
	return !e.NetMetering && !e.GrossMetering && !e.SimpleSetup
}

// Default returns the category an undecided applicant would fall into.
func (e Eligibility) Default() Category {
	switch {
	case e.NetMetering:
		return CategoryNetMetering
	case e.GrossMetering:
		return CategoryGrossMetering
	case e.SimpleSetup:
		return CategorySimpleSetup
	default:
		return CategoryIneligible
	}
}

// Allows reports whether the capacity qualifies for a declared category.
func (e Eligibility) Allows(category Category) bool {
	switch category {
	case CategoryNetMetering:
		return e.NetMetering
	case CategoryGrossMetering:
		return e.GrossMetering
	case CategorySimpleSetup:
		return e.SimpleSetup
	default:
		return false
	}
}
