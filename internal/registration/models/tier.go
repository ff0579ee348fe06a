package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tier classifies a registrant and controls which page they are routed to.
type Tier string

const (
	TierHost            Tier = "host"
	TierGuest           Tier = "guest"
	TierRestricted      Tier = "restricted"
	TierPendingInterest Tier = "pending_interest"
)

func (t Tier) IsValid() bool {
	switch t {
	case TierHost, TierGuest, TierRestricted, TierPendingInterest:
		return true
	}
	return false
}

// Route returns the page path a registrant of this tier is redirected to.
// Anything that is not a host or confirmed guest lands on the restricted page.
func (t Tier) Route() string {
	switch t {
	case TierHost:
		return "/host"
	case TierGuest:
		return "/guest"
	default:
		return "/restricted"
	}
}

// Stored tier labels accumulated over the life of the guest list. The store
// holds free-form labels in several languages and casings; anything not
// recognized maps to restricted.
var tierLabels = map[string]Tier{
	"host":             TierHost,
	"socio":            TierHost,
	"founder":          TierHost,
	"guest":            TierGuest,
	"convidado":        TierGuest,
	"pending_interest": TierPendingInterest,
	"interessado":      TierPendingInterest,
}

// TierFromLabel maps a stored tier label to a Tier. Matching is
// case-insensitive and diacritic-insensitive ("Sócio" → host).
func TierFromLabel(label string) Tier {
	folded := foldDiacritics(strings.ToLower(strings.TrimSpace(label)))
	if tier, ok := tierLabels[folded]; ok {
		return tier
	}
	return TierRestricted
}

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldDiacritics(s string) string {
	folded, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		return s
	}
	return folded
}
