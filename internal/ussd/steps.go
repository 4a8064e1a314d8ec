package ussd

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Domenick1991/homecare/internal/catalog"
	"github.com/Domenick1991/homecare/internal/domain"
	"github.com/samber/lo"
)

const dateLayout = "2006-01-02"

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// invalid is the typed failure of one step; its text is shown verbatim on a
// terminal screen.
type invalid string

func (e invalid) Error() string { return string(e) }

const (
	errChoice  invalid = "Invalid choice."
	errService invalid = "Invalid service selection."
	errDate    invalid = "Invalid date. Use the format YYYY-MM-DD."
	errTime    invalid = "Invalid time. Use the format HH:MM (24-hour)."
	errCity    invalid = "Invalid city selection."
	errArea    invalid = "Invalid area selection."
	errMethod  invalid = "Invalid payment method."
)

// draft accumulates the choices decoded from the buffer so far.
type draft struct {
	service domain.Service
	date    string
	time    string
	city    domain.City
	area    string
	method  domain.PaymentMethod
}

func (d *draft) toDomain() domain.Draft {
	return domain.Draft{
		Service:   d.service,
		VisitDate: d.date,
		VisitTime: d.time,
		Address:   catalog.Address(d.city, d.area),
		Method:    d.method,
	}
}

// step is one node of the "book" branch: the prompt shown when the buffer
// ends here and the rule that decodes the segment answering it.
type step struct {
	prompt  func(r catalog.Registry, d *draft) string
	consume func(r catalog.Registry, d *draft, seg string) error
	// skip drops the node for drafts that do not need it.
	skip func(d *draft) bool
	// lazy steps accept any input until finalization.
	lazy bool
}

var bookSteps = []step{
	{prompt: promptServices, consume: consumeService},
	{prompt: promptDate, consume: consumeDate},
	{prompt: promptTime, consume: consumeTime},
	{prompt: promptCities, consume: consumeCity},
	{prompt: promptAreas, consume: consumeArea, skip: func(d *draft) bool { return d.city.CatchAll() }, lazy: true},
	{prompt: promptMethods, consume: consumeMethod},
}

func consumeService(r catalog.Registry, d *draft, seg string) error {
	s, ok := catalog.ServiceAt(r, seg)
	if !ok {
		return errService
	}
	d.service = s
	return nil
}

func consumeDate(_ catalog.Registry, d *draft, seg string) error {
	if !validDate(seg) {
		return errDate
	}
	d.date = seg
	return nil
}

func consumeTime(_ catalog.Registry, d *draft, seg string) error {
	if !validTime(seg) {
		return errTime
	}
	d.time = seg
	return nil
}

func consumeCity(r catalog.Registry, d *draft, seg string) error {
	c, ok := catalog.CityAt(r, seg)
	if !ok {
		return errCity
	}
	d.city = c
	return nil
}

func consumeArea(_ catalog.Registry, d *draft, seg string) error {
	a, ok := catalog.AreaAt(d.city, seg)
	if !ok {
		return errArea
	}
	d.area = a
	return nil
}

func consumeMethod(r catalog.Registry, d *draft, seg string) error {
	m, ok := catalog.MethodAt(r, seg)
	if !ok {
		return errMethod
	}
	d.method = m
	return nil
}

// validDate accepts exactly the strings that round-trip through calendar parsing.
func validDate(s string) bool {
	t, err := time.Parse(dateLayout, s)
	return err == nil && t.Format(dateLayout) == s
}

func validTime(s string) bool {
	return timePattern.MatchString(s)
}

func promptServices(r catalog.Registry, _ *draft) string {
	return "Select service:\n" + numbered(lo.Map(r.Services(), func(s domain.Service, _ int) string {
		return fmt.Sprintf("%s (%s)", s.Name, catalog.Money(s.PriceTSh))
	}))
}

func promptDate(catalog.Registry, *draft) string {
	return "Enter visit date (YYYY-MM-DD):"
}

func promptTime(catalog.Registry, *draft) string {
	return "Enter visit time (HH:MM, 24-hour):"
}

func promptCities(r catalog.Registry, _ *draft) string {
	return "Select city:\n" + numbered(lo.Map(r.Cities(), func(c domain.City, _ int) string { return c.Name }))
}

func promptAreas(_ catalog.Registry, d *draft) string {
	return fmt.Sprintf("Select area in %s:\n", d.city.Name) + numbered(d.city.Areas)
}

func promptMethods(r catalog.Registry, _ *draft) string {
	return "Select payment method:\n" + methodList(r)
}

func methodList(r catalog.Registry) string {
	lines := lo.Map(r.PaymentMethods(), func(m domain.PaymentMethod, _ int) string {
		return fmt.Sprintf("%d. %s", m.Ordinal, m.DisplayName)
	})
	return strings.Join(lines, "\n")
}

func numbered(items []string) string {
	return strings.Join(lo.Map(items, func(item string, i int) string {
		return fmt.Sprintf("%d. %s", i+1, item)
	}), "\n")
}
