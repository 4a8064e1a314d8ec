package catalog

import (
	"strconv"

	"github.com/Domenick1991/homecare/internal/domain"
	"github.com/leekchan/accounting"
)

// Registry is the read-only reference data consulted by both channels.
type Registry interface {
	Services() []domain.Service
	Cities() []domain.City
	PaymentMethods() []domain.PaymentMethod
}

type StaticRegistry struct {
	services []domain.Service
	cities   []domain.City
	methods  []domain.PaymentMethod
}

func New(services []domain.Service, cities []domain.City, methods []domain.PaymentMethod) *StaticRegistry {
	return &StaticRegistry{services: services, cities: cities, methods: methods}
}

// Default is the catalog the platform ships with.
func Default() *StaticRegistry {
	return New(
		[]domain.Service{
			{ID: 1, Name: "General Nursing Visit", PriceTSh: 25000},
			{ID: 2, Name: "Wound Care & Dressing", PriceTSh: 30000},
			{ID: 3, Name: "Elderly Care", PriceTSh: 35000},
			{ID: 4, Name: "Mother & Baby Care", PriceTSh: 30000},
			{ID: 5, Name: "Post-Surgery Care", PriceTSh: 40000},
			{ID: 6, Name: "Injection & Medication", PriceTSh: 15000},
		},
		[]domain.City{
			{Name: "Dar es Salaam", Areas: []string{"Kinondoni", "Ilala", "Temeke", "Ubungo", "Kigamboni"}},
			{Name: "Arusha", Areas: []string{"Arusha Mjini", "Arumeru", "Njiro"}},
			{Name: "Mwanza", Areas: []string{"Nyamagana", "Ilemela"}},
			{Name: "Dodoma", Areas: []string{"Dodoma Mjini", "Chamwino"}},
			{Name: "Mbeya", Areas: []string{"Mbeya Mjini", "Uyole"}},
			{Name: "Other"},
		},
		[]domain.PaymentMethod{
			{Ordinal: 1, Code: "mpesa", DisplayName: "M-Pesa"},
			{Ordinal: 2, Code: "tigopesa", DisplayName: "Tigo Pesa"},
			{Ordinal: 3, Code: "airtelmoney", DisplayName: "Airtel Money"},
			{Ordinal: 4, Code: "halopesa", DisplayName: "HaloPesa"},
		},
	)
}

func (r *StaticRegistry) Services() []domain.Service             { return r.services }
func (r *StaticRegistry) Cities() []domain.City                  { return r.cities }
func (r *StaticRegistry) PaymentMethods() []domain.PaymentMethod { return r.methods }

var _ Registry = (*StaticRegistry)(nil)

// Ordinal parses a 1-based menu choice against a list of size n.
func Ordinal(input string, n int) (int, bool) {
	v, err := strconv.Atoi(input)
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v - 1, true
}

func ServiceAt(r Registry, input string) (domain.Service, bool) {
	services := r.Services()
	i, ok := Ordinal(input, len(services))
	if !ok {
		return domain.Service{}, false
	}
	return services[i], true
}

func CityAt(r Registry, input string) (domain.City, bool) {
	cities := r.Cities()
	i, ok := Ordinal(input, len(cities))
	if !ok {
		return domain.City{}, false
	}
	return cities[i], true
}

func AreaAt(city domain.City, input string) (string, bool) {
	i, ok := Ordinal(input, len(city.Areas))
	if !ok {
		return "", false
	}
	return city.Areas[i], true
}

func MethodAt(r Registry, input string) (domain.PaymentMethod, bool) {
	for _, m := range r.PaymentMethods() {
		if strconv.Itoa(m.Ordinal) == input {
			return m, true
		}
	}
	return domain.PaymentMethod{}, false
}

// MethodByCode looks a method up by its internal code.
func MethodByCode(r Registry, code string) (domain.PaymentMethod, bool) {
	for _, m := range r.PaymentMethods() {
		if m.Code == code {
			return m, true
		}
	}
	return domain.PaymentMethod{}, false
}

// Address renders "Area, City" or just "City" for the catch-all entry.
func Address(city domain.City, area string) string {
	if area == "" {
		return city.Name
	}
	return area + ", " + city.Name
}

var tsh = accounting.Accounting{Symbol: "TSh ", Precision: 0, Thousand: ",", Decimal: "."}

// Money formats a shilling amount for a feature-phone screen.
func Money(amount int64) string {
	return tsh.FormatMoney(amount)
}
