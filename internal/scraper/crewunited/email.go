package crewunited

import (
	"regexp"
	"strings"

	"github.com/Wilfredoo/crew-scraper/internal/browser"

	"github.com/rs/zerolog/log"
)

var (
	emailRegex    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	quotedLiteral = regexp.MustCompile(`'([^']*)'`)

	deobfuscator = strings.NewReplacer("$_isdot_$", ".", "$_isat_$", "@")
)

// DecodeObfuscated reverses the site's address obfuscation token swap.
func DecodeObfuscated(s string) string {
	return deobfuscator.Replace(s)
}

type emailStrategy struct {
	name string
	find func(el browser.Element, rawText string) (string, error)
}

// EmailExtractor tries the strategies in order: obfuscated click handler,
// mailto link, then a regex over the visible text.
type EmailExtractor struct {
	marker     string
	strategies []emailStrategy
}

func NewEmailExtractor(obfuscationMarker string) *EmailExtractor {
	x := &EmailExtractor{marker: obfuscationMarker}
	x.strategies = []emailStrategy{
		{name: "obfuscated", find: x.fromObfuscatedLink},
		{name: "mailto", find: fromMailto},
		{name: "regex", find: fromText},
	}
	return x
}

// Extract returns the first address any strategy finds. No address is not
// an error.
func (x *EmailExtractor) Extract(el browser.Element, rawText string) (string, bool) {
	for _, s := range x.strategies {
		email, err := s.find(el, rawText)
		if err != nil {
			log.Debug().Err(err).Str("strategy", s.name).Msg("email strategy abandoned")
			continue
		}
		if email != "" {
			log.Debug().Str("strategy", s.name).Str("email", email).Msg("📧 Email found")
			return email, true
		}
	}
	return "", false
}

func (x *EmailExtractor) fromObfuscatedLink(el browser.Element, _ string) (string, error) {
	if el == nil {
		return "", nil
	}
	anchors, err := el.FindAll("a")
	if err != nil {
		return "", err
	}
	for _, a := range anchors {
		onclick, ok, err := a.Attribute("onclick")
		if err != nil {
			return "", err
		}
		if !ok || !strings.Contains(onclick, x.marker) {
			continue
		}
		m := quotedLiteral.FindStringSubmatch(onclick)
		if m == nil || strings.TrimSpace(m[1]) == "" {
			log.Debug().Str("onclick", onclick).Msg("obfuscated handler without literal")
			continue
		}
		return strings.TrimSpace(DecodeObfuscated(m[1])), nil
	}
	return "", nil
}

func fromMailto(el browser.Element, _ string) (string, error) {
	if el == nil {
		return "", nil
	}
	anchors, err := el.FindAll("a")
	if err != nil {
		return "", err
	}
	for _, a := range anchors {
		href, ok, err := a.Attribute("href")
		if err != nil {
			return "", err
		}
		_, addr, found := strings.Cut(href, "mailto:")
		if !ok || !found {
			continue
		}
		//drop ?subject=... and friends
		addr, _, _ = strings.Cut(addr, "?")
		if addr = strings.TrimSpace(addr); addr != "" {
			return addr, nil
		}
	}
	return "", nil
}

func fromText(_ browser.Element, rawText string) (string, error) {
	return emailRegex.FindString(rawText), nil
}
