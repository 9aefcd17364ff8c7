package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"upwork-job-scorer/models"
	"upwork-job-scorer/utils"
)

// Canonical field names; also the labels used for parse-failure counts.
const (
	fieldTitle       = "title"
	fieldURL         = "url"
	fieldCountry     = "country"
	fieldDescription = "description"
	fieldTimePosted  = "time_posted"
	fieldSkillLevel  = "skill_level"
	fieldSpent       = "client_spent"
	fieldRate        = "hourly_rate"
	fieldBudget      = "estimated_budget"
	fieldRating      = "rating"
	fieldVerified    = "payment_verified"
	fieldHours       = "hours_per_week"
	fieldDuration    = "duration"
	fieldSkills      = "skills"
)

// columnAliases maps normalized header names (lowercased, underscores
// replaced by spaces, whitespace collapsed) to canonical fields.
// Unknown columns are ignored.
var columnAliases = map[string]string{
	"title":     fieldTitle,
	"job title": fieldTitle,

	"url":          fieldURL,
	"link":         fieldURL,
	"job url":      fieldURL,
	"job url main": fieldURL,

	"country":  fieldCountry,
	"location": fieldCountry,

	"description":     fieldDescription,
	"job description": fieldDescription,

	"time posted": fieldTimePosted,
	"posted":      fieldTimePosted,

	"skill level":      fieldSkillLevel,
	"experience level": fieldSkillLevel,

	"client spent":          fieldSpent,
	"spent":                 fieldSpent,
	"total spent":           fieldSpent,
	"total spent by client": fieldSpent,

	"rate":        fieldRate,
	"hourly rate": fieldRate,
	"rate range":  fieldRate,

	"estimated budget": fieldBudget,
	"est budget":       fieldBudget,
	"budget":           fieldBudget,

	"rating":        fieldRating,
	"client rating": fieldRating,

	"verified":         fieldVerified,
	"payment":          fieldVerified,
	"payment verified": fieldVerified,

	"hours":          fieldHours,
	"hours per week": fieldHours,
	"weekly hours":   fieldHours,
	"estimated time": fieldHours,

	"duration":           fieldDuration,
	"project duration":   fieldDuration,
	"project length":     fieldDuration,
	"estimated duration": fieldDuration,

	"skills":       fieldSkills,
	"skill tags":   fieldSkills,
	"tags":         fieldSkills,
	"technologies": fieldSkills,

	// Raw scraped exports carry CSS-class header names instead of
	// labels; these come straight from the upstream scraper's output.
	"air3 link":       fieldTitle,
	"air3 link href":  fieldURL,
	"air3 line clamp": fieldDescription,
	"d inline block":  fieldSpent,
	"d inline flex":   fieldCountry,
	"sr only 6":       fieldRating,
	"text caption 2":  fieldTimePosted,
	"text light 2":    fieldRate,
	"text light 4":    fieldSkillLevel,
	"text light 6":    fieldHours,
	"text light 7":    fieldBudget,
	"text light 8":    fieldVerified,
}

var (
	// currencyRegexp matches a numeric literal with an optional K/M suffix
	// after currency cleaning, e.g. "50K", "1.2M", "120.50".
	currencyRegexp = regexp.MustCompile(`^([0-9]*\.?[0-9]+)\s*([kKmM])?$`)
	// ratingRegexp captures a numeric rating in the 0.0-5.0 range.
	ratingRegexp = regexp.MustCompile(`\b([0-5](?:\.\d{1,2})?)\b`)
	// numberRegexp captures the first plain number, e.g. the 30 in "30+ hrs/week".
	numberRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)
	// tagStripRegexp removes list-literal punctuation around tag strings.
	tagStripRegexp = regexp.MustCompile(`[\[\]'"()]`)
)

// paymentVerifiedPhrase is the marker scraped from verified clients.
const paymentVerifiedPhrase = "payment verified"

// Normalizer converts RawRecords into typed NormalizedJobs.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize parses a single raw record. It returns either the normalized
// job, or a drop reason when the quality filter excludes the record.
// The returned issues list names the fields whose values failed to parse;
// those fields fall back to safe defaults instead of failing the record.
// Normalize touches no shared state and is safe to call concurrently.
func (n *Normalizer) Normalize(raw models.RawRecord) (*models.NormalizedJob, []string, *models.DropReason) {
	fields := resolveColumns(raw)
	var issues []string

	job := &models.NormalizedJob{
		Title:       normaliseText(fields[fieldTitle]),
		URL:         strings.TrimSpace(fields[fieldURL]),
		Country:     normaliseText(fields[fieldCountry]),
		Description: normaliseText(fields[fieldDescription]),
		TimePosted:  normaliseText(fields[fieldTimePosted]),
		SkillLevel:  normaliseText(fields[fieldSkillLevel]),
	}

	spent, spentKnown, spentFailed := parseCurrency(fields[fieldSpent])
	if spentFailed {
		issues = append(issues, fieldSpent)
		n.logger.Debug("[normalizer] Unparseable spend %q for %q", fields[fieldSpent], job.Title)
	}
	job.ClientTotalSpent = spent
	job.SpendKnown = spentKnown

	low, high, rateKnown, rateFailed := parseRateRange(fields[fieldRate])
	if rateFailed {
		issues = append(issues, fieldRate)
		n.logger.Debug("[normalizer] Unparseable rate %q for %q", fields[fieldRate], job.Title)
	}
	job.HourlyRateLow = low
	job.HourlyRateHigh = high
	job.RateKnown = rateKnown

	budget, budgetKnown, budgetFailed := parseBudget(fields[fieldBudget])
	if budgetFailed {
		issues = append(issues, fieldBudget)
		n.logger.Debug("[normalizer] Unparseable budget %q for %q", fields[fieldBudget], job.Title)
	}
	job.EstimatedBudget = budget
	job.BudgetKnown = budgetKnown

	rating, ratingFailed := parseRating(fields[fieldRating])
	if ratingFailed {
		issues = append(issues, fieldRating)
		n.logger.Debug("[normalizer] Unparseable rating %q for %q", fields[fieldRating], job.Title)
	}
	job.ClientRating = rating

	hours, hoursFailed := parseHours(fields[fieldHours])
	if hoursFailed {
		issues = append(issues, fieldHours)
	}
	job.HoursPerWeek = hours

	job.Duration = parseDuration(fields[fieldDuration])
	job.PaymentVerified = strings.Contains(strings.ToLower(fields[fieldVerified]), paymentVerifiedPhrase)
	job.SkillTags = parseTags(fields[fieldSkills])

	// Quality filter runs after parsing so partially-parseable records
	// are not discarded prematurely.
	if job.Title == "" {
		reason := models.DropEmptyTitle
		return nil, issues, &reason
	}
	if job.ClientTotalSpent == 0 && job.HourlyRateLow == 0 && job.HourlyRateHigh == 0 &&
		job.EstimatedBudget == 0 {
		reason := models.DropNoEconomicSignal
		return nil, issues, &reason
	}

	return job, issues, nil
}

// resolveColumns maps raw header names to canonical fields, taking the
// first non-empty value per field. Headers that look like per-tag columns
// ("tag 1" .. "tag N") are merged into the skills field.
func resolveColumns(raw models.RawRecord) map[string]string {
	fields := make(map[string]string, len(columnAliases))
	for header, value := range raw {
		key := normaliseHeader(header)
		canonical, known := columnAliases[key]
		if !known {
			// Per-tag columns: "tag 1".."tag N" and the scraper's
			// "air3 token".."air3 token 8".
			if strings.HasPrefix(key, "tag") || strings.Contains(key, "token") {
				if v := strings.TrimSpace(value); v != "" {
					if fields[fieldSkills] == "" {
						fields[fieldSkills] = v
					} else {
						fields[fieldSkills] += ", " + v
					}
				}
			}
			continue
		}
		if fields[canonical] == "" {
			fields[canonical] = value
		}
	}
	return fields
}

func normaliseHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// parseCurrency converts strings like "$50K+", "$1.2M", "120.50" to a
// dollar amount. A missing or empty value reads as 0 with known=false;
// a present and parseable value (including "$0") is known. Unparseable
// values read as 0, known=false, and are flagged as a parse failure.
func parseCurrency(raw string) (value float64, known bool, failed bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, false
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "+"))

	m := currencyRegexp.FindStringSubmatch(s)
	if m == nil {
		return 0, false, true
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false, true
	}

	switch strings.ToLower(m[2]) {
	case "k":
		v *= 1_000
	case "m":
		v *= 1_000_000
	}
	return v, true, false
}

// parseBudget parses fixed-price budgets like "Est. Budget: $750".
// Any label before a colon is dropped before currency parsing.
func parseBudget(raw string) (value float64, known bool, failed bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, false
	}
	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		s = s[idx+1:]
	}
	return parseCurrency(s)
}

// parseRateRange parses hourly-rate ranges like "$75-100/hour". A single
// value populates both bounds. A low bound above the high bound is
// corrected by swapping.
func parseRateRange(raw string) (low, high float64, known bool, failed bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, 0, false, false
	}

	for _, suffix := range []string{"/hour", "/hr", "per hour", "hourly"} {
		s = strings.ReplaceAll(s, suffix, "")
	}
	s = strings.TrimSpace(s)

	lowStr, highStr, isRange := strings.Cut(s, "-")
	lv, lKnown, lFailed := parseCurrency(lowStr)
	if !isRange {
		return lv, lv, lKnown, lFailed
	}

	hv, hKnown, hFailed := parseCurrency(highStr)
	failed = lFailed || hFailed
	known = lKnown || hKnown

	switch {
	case lKnown && !hKnown:
		hv = lv
	case hKnown && !lKnown:
		lv = hv
	}
	if lv > hv {
		lv, hv = hv, lv
	}
	return lv, hv, known, failed
}

// parseRating extracts a 0.0-5.0 client rating; nil means absent.
func parseRating(raw string) (*float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}
	m := ratingRegexp.FindStringSubmatch(s)
	if m == nil {
		return nil, true
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 0 || v > 5 {
		return nil, true
	}
	return &v, false
}

// parseHours extracts the weekly-hours signal from strings like
// "30+ hrs/week" or "Less than 30 hrs/week" (which reads as half the
// stated ceiling, matching how the export phrases part-time listings).
func parseHours(raw string) (*float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil, false
	}
	m := numberRegexp.FindString(s)
	if m == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil, true
	}
	if strings.Contains(s, "less than") {
		v /= 2
	}
	return &v, false
}

// parseDuration maps free-text project-length phrases onto the ordered
// commitment categories.
func parseDuration(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "ongoing"), strings.Contains(s, "more than 6"):
		return "ongoing"
	case strings.Contains(s, "3 to 6"), s == "long":
		return "long"
	case strings.Contains(s, "1 to 3"), s == "medium":
		return "medium"
	case strings.Contains(s, "less than 1"), s == "short":
		return "short"
	default:
		return ""
	}
}

// parseTags splits a delimited or list-like string into lowercased,
// deduplicated skill tags, preserving first-seen order.
func parseTags(raw string) []string {
	s := tagStripRegexp.ReplaceAllString(raw, "")
	if strings.TrimSpace(s) == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var tags []string
	for _, token := range strings.Split(s, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tags = append(tags, token)
	}
	return tags
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
