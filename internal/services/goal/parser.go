// Package goal extracts investment goals from free-form text.
package goal

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/interfaces"
	"github.com/bobmcallan/realvest/internal/models"
)

// ErrEmptyGoal is returned for blank input.
var ErrEmptyGoal = errors.New("goal text is empty")

// Defaults applied when the text does not mention a field.
const (
	DefaultMonthlyIncome = 10000
	DefaultHorizonMonths = 36
	DefaultCapital       = 50000
	DefaultRisk          = "balanced"

	// net monthly income assumed per rental when sizing a goal
	incomePerProperty = 400
)

// amount captures a dollar figure and an optional thousands suffix.
const amount = `\$?([\d,]+(?:\.\d+)?)\s*([kK])?`

var (
	incomePatterns = compile(
		amount+`\s*(?:/month|/mo|monthly|per month|a month)`,
		`(?:generate|earn|make|produce|need|want|target|is)\s+`+amount+`\s*(?:monthly|per month|/mo|/month|a month)?`,
		`(?:monthly|passive)\s+income\s+(?:of\s+|is\s+)?`+amount,
		`(?:target\s+income|income\s+target)\s*(?:is\s+|:\s*)?`+amount,
	)
	horizonPatterns = compile(
		`(?:within|in|over)\s+(\d+)\s+(months?)`,
		`(?:within|in|over)\s+(\d+)\s+(years?)`,
		`(\d+)\s+(months?|years?)\s+(?:timeline|timeframe|horizon)`,
		`(?:by|before)\s+(\d+)\s+(months?|years?)`,
		`(?:timeline|timeframe)\s*(?:is\s+|:\s*)?(\d+)\s+(months?)`,
	)
	capitalPatterns = compile(
		`(?:have|start with|starting with|begin with)\s+`+amount,
		amount+`\s+(?:to start|starting capital|initial capital|in cash|cash|capital)`,
		`(?:initial|starting)\s+(?:capital|cash|funds?)\s+(?:of\s+|is\s+|:\s*)?`+amount,
		`capital\s*(?:is\s+|:\s*)?`+amount,
	)
	contributionPatterns = compile(
		`(?:save|add|contribute|invest)\s+`+amount+`\s*(?:/month|/mo|monthly|per month|a month)`,
		`(?:monthly|additional)\s+(?:savings?|contributions?|investments?)\s+(?:of\s+|is\s+|:\s*)?`+amount,
		`can\s+(?:save|add|contribute)\s+`+amount+`\s*(?:monthly|/mo|/month|per month|a month)?`,
		`savings\s*(?:is\s+|:\s*)?`+amount,
	)
	rentPatterns = compile(
		`\b(?:monthly\s+)?rents?\s+(?:is|are|of|at|for|:)\s*`+amount,
		amount+`\s*(?:/month|/mo|per month|a month)?\s+(?:in\s+)?rent\b`,
	)
	expensePatterns = compile(
		`\b(?:monthly\s+|operating\s+)?expenses?\s+(?:is|are|of|at|:)\s*`+amount,
		amount+`\s+(?:in|of)\s+(?:monthly\s+|operating\s+)?expenses\b`,
	)
	salesPatterns = compile(
		amount+`\s+(?:in\s+)?(?:cash\s+)?from\s+(?:property\s+)?sales?\b`,
		`(?:cash|proceeds)\s+from\s+(?:property\s+)?sales?\s+(?:of\s+|is\s+|:\s*)?`+amount,
		`(?:sales?|flip)\s+proceeds\s+(?:of\s+|is\s+|:\s*)?`+amount,
	)
	approachPatterns = compile(
		`(aggressive|conservative|balanced|moderate)`,
		`prefer\s+(flips?|rentals?|brr+|buy.?and.?hold)`,
		`(flip.?heavy|rental.?heavy|mixed|combination)`,
		`focus\s+on\s+(flips?|rentals?|brr+)`,
	)

	flipRe   = regexp.MustCompile(`flip`)
	brrrRe   = regexp.MustCompile(`brr+`)
	rentalRe = regexp.MustCompile(`rental|rent|buy.?and.?hold`)
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// Parser implements GoalParser with regular expressions.
type Parser struct {
	logger *common.Logger
}

var _ interfaces.GoalParser = (*Parser)(nil)

// NewParser creates a goal parser
func NewParser(logger *common.Logger) *Parser {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Parser{logger: logger}
}

// Parse extracts a goal from text. Missing fields take defaults and every
// field is clamped to a sane range.
func (p *Parser) Parse(text string) (*models.Goal, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyGoal
	}

	g := &models.Goal{
		TargetMonthlyIncome:  DefaultMonthlyIncome,
		TimeHorizonMonths:    DefaultHorizonMonths,
		StartingCapital:      DefaultCapital,
		MonthlyContributions: 0,
		Strategies:           strategies(text),
		RiskTolerance:        riskTolerance(text),
		Source:               text,
	}

	// Per-unit and sale figures are cut out first so their amounts are not
	// read as income, capital or contributions.
	rest := text
	if v, ok := takeAmount(rentPatterns, &rest); ok {
		g.RentPerUnit = v
	}
	if v, ok := takeAmount(expensePatterns, &rest); ok {
		g.ExpensesPerUnit = v
	}
	if v, ok := takeAmount(salesPatterns, &rest); ok {
		g.TargetCashFromSales = v
	}

	if v, ok := matchAmount(incomePatterns, rest); ok {
		g.TargetMonthlyIncome = v
	}
	if v, ok := matchMonths(text); ok {
		g.TimeHorizonMonths = v
	}
	if v, ok := matchAmount(capitalPatterns, rest); ok {
		g.StartingCapital = v
	}
	if v, ok := matchAmount(contributionPatterns, rest); ok {
		g.MonthlyContributions = v
	}

	g.TargetMonthlyIncome = clamp(g.TargetMonthlyIncome, 1000, 100000)
	g.TimeHorizonMonths = int(clamp(float64(g.TimeHorizonMonths), 6, 120))
	g.StartingCapital = clamp(g.StartingCapital, 10000, 1000000)
	g.MonthlyContributions = clamp(g.MonthlyContributions, 0, 50000)

	perProperty := float64(incomePerProperty)
	if g.RentPerUnit > 0 && g.ExpensesPerUnit > 0 {
		g.CashFlowPerUnit = g.RentPerUnit - g.ExpensesPerUnit
		if g.CashFlowPerUnit > 0 {
			perProperty = g.CashFlowPerUnit
		}
	}
	g.RequiredProperties = int(math.Ceil(g.TargetMonthlyIncome / perProperty))

	p.logger.Debug().
		Float64("income", g.TargetMonthlyIncome).
		Int("horizon", g.TimeHorizonMonths).
		Float64("capital", g.StartingCapital).
		Float64("contributions", g.MonthlyContributions).
		Float64("rent_per_unit", g.RentPerUnit).
		Float64("expenses_per_unit", g.ExpensesPerUnit).
		Float64("cash_from_sales", g.TargetCashFromSales).
		Strs("strategies", g.Strategies).
		Str("risk", g.RiskTolerance).
		Msg("Goal parsed")

	return g, nil
}

// Confidence describes how much of a goal came from the text rather than defaults.
type Confidence struct {
	Score       int  `json:"score"`
	FieldsFound int  `json:"fields_found"`
	High        bool `json:"high"`
}

// Confidence scores a parsed goal: 25 each for income, horizon and capital that
// differ from the defaults, 15 for contributions and 10 for strategies.
func (p *Parser) Confidence(g *models.Goal) Confidence {
	var c Confidence
	add := func(ok bool, points int) {
		if ok {
			c.Score += points
			c.FieldsFound++
		}
	}
	add(g.TargetMonthlyIncome != DefaultMonthlyIncome, 25)
	add(g.TimeHorizonMonths != DefaultHorizonMonths, 25)
	add(g.StartingCapital != DefaultCapital, 25)
	add(g.MonthlyContributions > 0, 15)
	add(len(g.Strategies) > 0, 10)
	c.High = c.Score >= 75
	return c
}

func matchAmount(patterns []*regexp.Regexp, text string) (float64, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := parseAmount(m[1], m[2]); ok {
			return v, true
		}
	}
	return 0, false
}

// takeAmount is matchAmount that also blanks the matched phrase out of text.
func takeAmount(patterns []*regexp.Regexp, text *string) (float64, bool) {
	for _, re := range patterns {
		loc := re.FindStringSubmatchIndex(*text)
		if loc == nil {
			continue
		}
		suffix := ""
		if loc[4] >= 0 {
			suffix = (*text)[loc[4]:loc[5]]
		}
		v, ok := parseAmount((*text)[loc[2]:loc[3]], suffix)
		if !ok {
			continue
		}
		*text = (*text)[:loc[0]] + " " + (*text)[loc[1]:]
		return v, true
	}
	return 0, false
}

func parseAmount(digits, suffix string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if suffix != "" && v < 1000 {
		v *= 1000
	}
	return v, true
}

func matchMonths(text string) (int, bool) {
	for _, re := range horizonPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(m[2]), "year") {
			n *= 12
		}
		return n, true
	}
	return 0, false
}

func strategies(text string) []string {
	lower := strings.ToLower(text)
	out := []string{}
	add := func(s string) {
		for _, have := range out {
			if have == s {
				return
			}
		}
		out = append(out, s)
	}

	if flipRe.MatchString(lower) {
		add("flip")
	}
	if brrrRe.MatchString(lower) {
		add("brrr")
	}
	if rentalRe.MatchString(lower) {
		add("rental")
	}
	for _, re := range approachPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			add(strings.ToLower(m[1]))
		}
	}
	return out
}

func riskTolerance(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "aggressive"), strings.Contains(lower, "fast"):
		return "aggressive"
	case strings.Contains(lower, "conservative"), strings.Contains(lower, "safe"), strings.Contains(lower, "low risk"):
		return "conservative"
	case strings.Contains(lower, "balanced"), strings.Contains(lower, "moderate"):
		return "balanced"
	}

	hasFlip := flipRe.MatchString(lower)
	switch {
	case hasFlip:
		return "aggressive"
	case rentalRe.MatchString(lower):
		return "conservative"
	}
	return DefaultRisk
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
