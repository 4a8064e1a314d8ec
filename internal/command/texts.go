package command

import "github.com/Domenick1991/homecare/internal/domain"

// texts holds every reply of the command channel in one language.
type texts struct {
	help           string
	servicesHeader string
	unknown        string
	unavailable    string

	notRegistered     string
	registered        string
	alreadyRegistered string
	registerUsage     string

	statusUsage string
	status      string
	notFound    string
	noBookings  string
	bookingLine string
	myBookings  string

	cancelUsage      string
	cancelled        string
	alreadyCancelled string
	cannotCancel     string

	balance   string
	noPending string

	payUsage     string
	payInvalid   string
	payNoPending string
	paid         string
	alreadyPaid  string
	payInFlight  string
	langUsage    string
	langChanged  string
	statusLabels map[domain.BookingStatus]string
}

var english = texts{
	help: "HomeCare commands:\nSERVICES - list services\nSTATUS <id> - booking status\nMYBOOKINGS - recent bookings\n" +
		"LAST - last booking\nCANCEL <id> - cancel booking\nBALANCE - amount due\nPAY <id> <method> - pay booking\nLANG EN|SW - language",
	servicesHeader: "HomeCare services:",
	unknown:        "Unknown command. Send HELP for the list of commands.",
	unavailable:    "Service temporarily unavailable. Please try again later.",

	notRegistered:     "Your number is not registered. Send NISAJILI <your name> to register.",
	registered:        "Welcome %s! You are registered with HomeCare. Send HELP for instructions.",
	alreadyRegistered: "This number is already registered as %s.",
	registerUsage:     "To register send NISAJILI followed by your name, e.g. NISAJILI Jane Doe.",

	statusUsage: "Send STATUS <booking id>, e.g. STATUS 12.",
	status:      "Booking #%d: %s on %s at %s, %s. Status: %s.",
	notFound:    "Booking #%d was not found.",
	noBookings:  "You have no bookings.",
	bookingLine: "#%d %s %s %s (%s)",
	myBookings:  "Your bookings:",

	cancelUsage:      "Send CANCEL <booking id>, e.g. CANCEL 12.",
	cancelled:        "Booking #%d has been cancelled.",
	alreadyCancelled: "Booking #%d is already cancelled.",
	cannotCancel:     "Cannot cancel completed booking #%d.",

	balance:   "You have %d pending payment(s) totalling %s.",
	noPending: "You have no pending payments.",

	payUsage:     "Send PAY <booking id> <method>, methods:\n%s",
	payInvalid:   "Invalid payment method. Methods:\n%s",
	payNoPending: "Booking #%d has no pending payment.",
	paid:         "Payment of %s via %s received for booking #%d. Ref: %s",
	alreadyPaid:  "This payment has already been completed.",
	payInFlight:  "Your payment is being processed. You will receive an SMS shortly.",
	langUsage:    "Send LANG EN or LANG SW.",
	langChanged:  "Language set to English.",
	statusLabels: map[domain.BookingStatus]string{
		domain.BookingStatusPending:   "pending",
		domain.BookingStatusConfirmed: "confirmed",
		domain.BookingStatusCompleted: "completed",
		domain.BookingStatusCancelled: "cancelled",
	},
}

var swahili = texts{
	help: "Amri za HomeCare:\nSERVICES - huduma\nSTATUS <namba> - hali ya miadi\nMYBOOKINGS - miadi yako\n" +
		"LAST - miadi ya mwisho\nCANCEL <namba> - futa miadi\nBALANCE - deni\nLIPA <namba> <njia> - lipia miadi\nLANG EN|SW - lugha",
	servicesHeader: "Huduma za HomeCare:",
	unknown:        "Amri haijulikani. Tuma HELP kupata orodha ya amri.",
	unavailable:    "Huduma haipatikani kwa sasa. Tafadhali jaribu tena baadaye.",

	notRegistered:     "Namba yako haijasajiliwa. Tuma NISAJILI <jina lako> kujisajili.",
	registered:        "Karibu %s! Umesajiliwa HomeCare. Tuma HELP kupata maelekezo.",
	alreadyRegistered: "Namba hii tayari imesajiliwa kwa jina %s.",
	registerUsage:     "Kujisajili tuma NISAJILI ikifuatiwa na jina lako, mfano NISAJILI Jane Doe.",

	statusUsage: "Tuma STATUS <namba ya miadi>, mfano STATUS 12.",
	status:      "Miadi #%d: %s tarehe %s saa %s, %s. Hali: %s.",
	notFound:    "Miadi #%d haikupatikana.",
	noBookings:  "Huna miadi yoyote.",
	bookingLine: "#%d %s %s %s (%s)",
	myBookings:  "Miadi yako:",

	cancelUsage:      "Tuma CANCEL <namba ya miadi>, mfano CANCEL 12.",
	cancelled:        "Miadi #%d imefutwa.",
	alreadyCancelled: "Miadi #%d tayari imefutwa.",
	cannotCancel:     "Huwezi kufuta miadi #%d iliyokamilika.",

	balance:   "Una malipo %d yanayosubiri, jumla %s.",
	noPending: "Huna malipo yanayosubiri.",

	payUsage:     "Tuma LIPA <namba ya miadi> <njia>, njia:\n%s",
	payInvalid:   "Njia ya malipo si sahihi. Njia:\n%s",
	payNoPending: "Miadi #%d haina malipo yanayosubiri.",
	paid:         "Malipo ya %s kwa %s yamepokelewa kwa miadi #%d. Kumb: %s",
	alreadyPaid:  "Malipo haya yameshakamilika.",
	payInFlight:  "Malipo yako yanashughulikiwa. Utapokea SMS muda mfupi.",
	langUsage:    "Tuma LANG EN au LANG SW.",
	langChanged:  "Lugha imebadilishwa kuwa Kiswahili.",
	statusLabels: map[domain.BookingStatus]string{
		domain.BookingStatusPending:   "inasubiri",
		domain.BookingStatusConfirmed: "imethibitishwa",
		domain.BookingStatusCompleted: "imekamilika",
		domain.BookingStatusCancelled: "imefutwa",
	},
}

func textsFor(lang domain.Language) texts {
	if lang == domain.LanguageEnglish {
		return english
	}
	return swahili
}

func (t texts) statusLabel(s domain.BookingStatus) string {
	if label, ok := t.statusLabels[s]; ok {
		return label
	}
	return string(s)
}
