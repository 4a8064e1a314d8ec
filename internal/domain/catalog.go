package domain

type Service struct {
	ID       int
	Name     string
	PriceTSh int64
}

type City struct {
	Name  string
	Areas []string
}

// CatchAll reports whether the city is itself the final location choice.
func (c City) CatchAll() bool {
	return len(c.Areas) == 0
}

type PaymentMethod struct {
	Ordinal     int
	Code        string
	DisplayName string
}

// Draft is a fully validated set of menu choices ready for finalization.
type Draft struct {
	Service   Service
	VisitDate string
	VisitTime string
	Address   string
	Method    PaymentMethod
}
