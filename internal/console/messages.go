package console

import "strings"

// Locale selects the message catalog used for user-facing feedback.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleFrench  Locale = "fr"
)

// Message keys surfaced by console actions.
const (
	MsgTypeMissing    = "type_missing"
	MsgNetworkFailure = "network_failure"
	MsgRowBusy        = "row_busy"
	MsgFileRequired   = "file_required"
	MsgStatusUpdated  = "status_updated"
	MsgFileAdded      = "file_added"
	MsgRequestDeleted = "request_deleted"
	MsgReplySent      = "reply_sent"
)

var catalog = map[Locale]map[string]string{
	LocaleEnglish: {
		MsgTypeMissing:    "This request has no type and cannot be updated.",
		MsgNetworkFailure: "The server could not be reached. Please try again.",
		MsgRowBusy:        "A previous action on this request is still running.",
		MsgFileRequired:   "Please choose a file before uploading.",
		MsgStatusUpdated:  "Request status updated.",
		MsgFileAdded:      "File attached to the request.",
		MsgRequestDeleted: "Request rejected.",
		MsgReplySent:      "Reply sent.",
	},
	LocaleFrench: {
		MsgTypeMissing:    "Cette demande n'a pas de type et ne peut pas être mise à jour.",
		MsgNetworkFailure: "Le serveur est injoignable. Veuillez réessayer.",
		MsgRowBusy:        "Une action précédente sur cette demande est encore en cours.",
		MsgFileRequired:   "Veuillez choisir un fichier avant l'envoi.",
		MsgStatusUpdated:  "Statut de la demande mis à jour.",
		MsgFileAdded:      "Fichier joint à la demande.",
		MsgRequestDeleted: "Demande rejetée.",
		MsgReplySent:      "Réponse envoyée.",
	},
}

// Localize resolves a message key for the locale, falling back to English
// and finally to the key itself.
func Localize(locale Locale, key string) string {
	locale = Locale(strings.ToLower(strings.TrimSpace(string(locale))))
	if messages, ok := catalog[locale]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[LocaleEnglish][key]; ok {
		return msg
	}
	return key
}
