package plate

import (
	"regexp"
	"strings"
)

// Parser extracts plate fields from normalized text by trying an ordered
// sequence of structural patterns, most complete first. Each tier is a data
// entry (pattern plus field binding); adding a tier means appending an
// entry, not growing a code branch.
type Parser struct {
	regions *RegionSet
	tiers   []tier
}

// NewParser constructs a parser with the given advisory region dictionary.
// A nil dictionary disables dictionary refinement but never parsing itself.
func NewParser(regions *RegionSet) *Parser {
	p := &Parser{regions: regions}
	p.tiers = []tier{
		patternTier("full",
			`([\p{Han}\p{Hiragana}\p{Katakana}A-Za-z]{1,5})\s*(\d{1,3})\s*([あ-ん])\s*(\d{1,2}[-ー]\d{2})`,
			func(p *Parser, m []string) Record {
				return Record{
					Region:         p.refineRegion(m[1]),
					Classification: m[2],
					Kana:           m[3],
					Serial:         canonicalSerial(m[4]),
				}
			}),
		patternTier("full_no_separator",
			`([\p{Han}\p{Hiragana}\p{Katakana}A-Za-z]{1,5})\s*(\d{1,3})\s*([あ-ん])\s*(\d{4})`,
			func(p *Parser, m []string) Record {
				return Record{
					Region:         p.refineRegion(m[1]),
					Classification: m[2],
					Kana:           m[3],
					Serial:         splitSerial(m[4]),
				}
			}),
		patternTier("no_classification",
			`(?:([\p{Han}\p{Hiragana}\p{Katakana}A-Za-z]{1,5})\s*)?([あ-ん])\s*(\d{1,2}[-ー]\d{2})`,
			func(p *Parser, m []string) Record {
				return Record{
					Region: p.refineRegion(m[1]),
					Kana:   m[2],
					Serial: canonicalSerial(m[3]),
				}
			}),
		patternTier("region_and_number",
			`([\p{Han}\p{Hiragana}\p{Katakana}A-Za-z]{2,5})\s*(\d+)`,
			func(p *Parser, m []string) Record {
				rec := Record{Region: p.refineRegion(m[1])}
				bindDigits(&rec, m[2])
				return rec
			}),
		{name: "best_effort", match: (*Parser).bestEffort},
	}
	return p
}

type tier struct {
	name  string
	match func(p *Parser, text string) *Record
}

func patternTier(name, pattern string, bind func(p *Parser, m []string) Record) tier {
	re := regexp.MustCompile(pattern)
	return tier{name: name, match: func(p *Parser, text string) *Record {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return nil
		}
		rec := bind(p, m)
		return &rec
	}}
}

// Parse applies the tiers in order and returns the first match. It returns
// nil only when not a single field can be extracted, which the best-effort
// tier makes rare: the input is then essentially unrecognizable.
func (p *Parser) Parse(text string) *Record {
	if text == "" {
		return nil
	}
	for _, t := range p.tiers {
		if rec := t.match(p, text); rec != nil {
			return rec
		}
	}
	return nil
}

// TierName reports which tier matches the given text, for diagnostics.
func (p *Parser) TierName(text string) string {
	if text == "" {
		return ""
	}
	for _, t := range p.tiers {
		if t.match(p, text) != nil {
			return t.name
		}
	}
	return ""
}

var (
	hyphenSerial = regexp.MustCompile(`\d{1,2}[-ー]\d{2}`)
	fourDigits   = regexp.MustCompile(`\d{4}`)
	threeDigits  = regexp.MustCompile(`\d{3}`)
	kanaChar     = regexp.MustCompile(`[あ-ん]`)
	regionLike   = regexp.MustCompile(`[\p{Han}\p{Hiragana}\p{Katakana}A-Za-z]{2,4}`)
)

// bestEffort independently searches for any region-like token, any syllabic
// character and any usable digit run; it succeeds if at least one is found.
func (p *Parser) bestEffort(text string) *Record {
	var rec Record
	if hit := p.regions.Find(text); hit != "" {
		rec.Region = hit
	} else if m := regionLike.FindString(text); m != "" {
		rec.Region = m
	}
	if m := kanaChar.FindString(text); m != "" {
		rec.Kana = m
	}
	switch {
	case hyphenSerial.MatchString(text):
		rec.Serial = canonicalSerial(hyphenSerial.FindString(text))
	case fourDigits.MatchString(text):
		rec.Serial = splitSerial(fourDigits.FindString(text))
	case threeDigits.MatchString(text):
		rec.Classification = threeDigits.FindString(text)
	}
	if rec.Empty() {
		return nil
	}
	return &rec
}

// bindDigits assigns a bare digit run: exactly four digits form a serial,
// exactly three a classification code; other lengths stay unbound.
func bindDigits(rec *Record, digits string) {
	switch len(digits) {
	case 4:
		rec.Serial = splitSerial(digits)
	case 3:
		rec.Classification = digits
	}
}

// refineRegion snaps a structural region token to a known name it contains,
// trimming OCR noise around it. Unknown tokens are kept as-is; the
// dictionary confirms, it never rejects.
func (p *Parser) refineRegion(token string) string {
	if token == "" {
		return ""
	}
	if p.regions.Contains(token) {
		return token
	}
	if hit := p.regions.Find(token); hit != "" {
		return hit
	}
	return token
}

// splitSerial canonicalizes a four-digit run by inserting the hyphen at the
// midpoint.
func splitSerial(d string) string {
	return d[:2] + "-" + d[2:]
}

// canonicalSerial replaces hyphen lookalikes the normalizer preserves (the
// katakana prolonged sound mark) with an ASCII hyphen.
func canonicalSerial(s string) string {
	return strings.ReplaceAll(s, "ー", "-")
}
