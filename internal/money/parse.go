package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/ledgercheck/internal/model"
)

// DefaultSymbols are the currency glyphs stripped before numeric parsing.
const DefaultSymbols = "$€£¥₡₱₲₵₴₹₽₺"

// Separator selects the decimal separator convention for a document locale.
type Separator int

const (
	// SeparatorAuto resolves the convention per token: the rightmost
	// separator followed by exactly two digits is the decimal point.
	SeparatorAuto Separator = iota
	// SeparatorDot treats "." as the decimal point, "," as grouping.
	SeparatorDot
	// SeparatorComma treats "," as the decimal point, "." as grouping.
	SeparatorComma
)

// Config controls amount parsing. The zero value gets default symbols,
// automatic separator resolution, and no OCR repair.
type Config struct {
	// Symbols is the set of currency glyphs recognized and stripped.
	Symbols string
	// Separator is the locale hint for decimal separator resolution.
	Separator Separator
	// FixConfusions enables the OCR glyph repair fallback (O→0, l→1, ...).
	// Repair runs only after a clean parse fails; it never overrides a
	// token that already parses.
	FixConfusions bool
}

// DefaultConfig returns the parser configuration used by the CLI and server
func DefaultConfig() Config {
	return Config{
		Symbols:       DefaultSymbols,
		Separator:     SeparatorAuto,
		FixConfusions: true,
	}
}

// Parser converts raw text tokens into MonetaryAmounts. Parsing is a pure
// function of the token and the configuration.
type Parser struct {
	cfg Config
}

// NewParser creates a parser with the given configuration
func NewParser(cfg Config) *Parser {
	if cfg.Symbols == "" {
		cfg.Symbols = DefaultSymbols
	}
	return &Parser{cfg: cfg}
}

var (
	commaDecimalRe = regexp.MustCompile(`,\d{2}$`)
	dotDecimalRe   = regexp.MustCompile(`\.\d{2}$`)
	digitRe        = regexp.MustCompile(`[0-9]`)
)

// ocrConfusions maps glyphs Tesseract commonly misreads for digits.
var ocrConfusions = map[rune]rune{
	'O': '0',
	'o': '0',
	'l': '1',
	'I': '1',
	'|': '1',
	'S': '5',
	'B': '8',
}

// Parse attempts to produce a MonetaryAmount from a raw token. line is the
// zero-based source line index recorded on the result.
func (p *Parser) Parse(token string, line int) (model.MonetaryAmount, error) {
	raw := strings.TrimSpace(token)
	s, symbol := p.stripSymbols(raw)
	s = strings.Join(strings.Fields(s), "")

	if s == "" || !digitRe.MatchString(s) {
		return model.MonetaryAmount{}, model.NewParseError(raw, "no digits after symbol stripping", nil)
	}

	value, err := p.parseNumeric(s)
	if err != nil && p.cfg.FixConfusions {
		if repaired := repairDigits(s); repaired != s {
			value, err = p.parseNumeric(repaired)
		}
	}
	if err != nil {
		return model.MonetaryAmount{}, model.NewParseError(raw, "not a valid decimal", err)
	}

	return model.MonetaryAmount{
		Value:      value,
		Symbol:     symbol,
		RawText:    raw,
		SourceLine: line,
	}, nil
}

func (p *Parser) parseNumeric(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(p.normalize(s))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return Round2(d), nil
}

// normalize rewrites s into a canonical dot-decimal form according to the
// configured separator convention.
func (p *Parser) normalize(s string) string {
	switch p.cfg.Separator {
	case SeparatorDot:
		s = strings.ReplaceAll(s, ",", "")
		return keepLastSep(s, '.')
	case SeparatorComma:
		s = strings.ReplaceAll(s, ".", "")
		s = keepLastSep(s, ',')
		return strings.ReplaceAll(s, ",", ".")
	}

	comma := strings.Contains(s, ",")
	dot := strings.Contains(s, ".")
	switch {
	case comma && dot:
		// Both present: the rightmost separator is the decimal point.
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			s = strings.ReplaceAll(s, ",", "")
			s = keepLastSep(s, '.')
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = keepLastSep(s, ',')
			s = strings.ReplaceAll(s, ",", ".")
		}
	case comma:
		if commaDecimalRe.MatchString(s) {
			s = keepLastSep(s, ',')
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case dot:
		if dotDecimalRe.MatchString(s) {
			s = keepLastSep(s, '.')
		} else {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// keepLastSep removes every occurrence of sep except the last one, so
// "1.234.56" becomes "1234.56".
func keepLastSep(s string, sep rune) string {
	last := strings.LastIndexByte(s, byte(sep))
	if last < 0 {
		return s
	}
	head := strings.ReplaceAll(s[:last], string(sep), "")
	return head + s[last:]
}

func (p *Parser) stripSymbols(s string) (cleaned, symbol string) {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(p.cfg.Symbols, r) {
			if symbol == "" {
				symbol = string(r)
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), symbol
}

func repairDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if d, ok := ocrConfusions[r]; ok {
			return d
		}
		return r
	}, s)
}
