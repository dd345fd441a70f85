package etl

import (
	"fmt"
	"strings"
	"time"

	"github.com/BartekS5/feedsync/pkg/logger"
	"github.com/BartekS5/feedsync/pkg/models"
	"github.com/BartekS5/feedsync/pkg/utils"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LineShape identifies which known column layout a feed line has.
type LineShape int

const (
	ShapeUnrecognized LineShape = iota
	// ShapeFull: date time reports targets attacks ip country_code country_name... city...
	ShapeFull
	// ShapeReduced: ip reports targets first_seen last_seen
	ShapeReduced
)

func (s LineShape) String() string {
	switch s {
	case ShapeFull:
		return "full"
	case ShapeReduced:
		return "reduced"
	default:
		return "unrecognized"
	}
}

type lineFormat struct {
	shape   LineShape
	matches func(fieldCount int) bool
	parse   func(fields []string) (models.AttackerRecord, error)
}

// Tried in order; the first format whose field count matches wins.
var lineFormats = []lineFormat{
	{shape: ShapeFull, matches: func(n int) bool { return n >= 9 }, parse: parseFullLine},
	{shape: ShapeReduced, matches: func(n int) bool { return n == 5 }, parse: parseReducedLine},
}

// ParseAttackerLine parses one data line of the top attackers feed. The
// returned record has no ingestion timestamp.
func ParseAttackerLine(line string) (models.AttackerRecord, LineShape, error) {
	fields := strings.Fields(line)
	for _, f := range lineFormats {
		if !f.matches(len(fields)) {
			continue
		}
		rec, err := f.parse(fields)
		return rec, f.shape, err
	}
	return models.AttackerRecord{}, ShapeUnrecognized,
		fmt.Errorf("%w: %d fields", ErrUnrecognizedShape, len(fields))
}

func parseFullLine(f []string) (models.AttackerRecord, error) {
	var rec models.AttackerRecord

	seen, err := parseTime(f[0]+" "+f[1], utils.DateTimeLayout)
	if err != nil {
		return rec, err
	}
	if rec.Reports, err = parseCount("reports", f[2]); err != nil {
		return rec, err
	}
	if rec.Targets, err = parseCount("targets", f[3]); err != nil {
		return rec, err
	}
	if rec.Attacks, err = parseCount("attacks", f[4]); err != nil {
		return rec, err
	}

	rec.IPAddress = f[5]
	rec.FirstSeen = seen
	rec.LastSeen = seen

	name, city := splitCountryAndCity(f[6], f[7:])
	rec.Location = models.Location{CountryCode: f[6], CountryName: name, City: city}
	return rec, nil
}

func parseReducedLine(f []string) (models.AttackerRecord, error) {
	var rec models.AttackerRecord
	var err error

	rec.IPAddress = f[0]
	if rec.Reports, err = parseCount("reports", f[1]); err != nil {
		return rec, err
	}
	if rec.Targets, err = parseCount("targets", f[2]); err != nil {
		return rec, err
	}
	if rec.FirstSeen, err = parseTime(f[3], utils.DateLayout); err != nil {
		return rec, err
	}
	if rec.LastSeen, err = parseTime(f[4], utils.DateLayout); err != nil {
		return rec, err
	}
	// This layout carries no attack count and no location.
	rec.Attacks = 0
	rec.Location = models.UnknownLocation()
	return rec, nil
}

func parseCount(name, s string) (int, error) {
	n, err := utils.ConvertToCount(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidNumber, name, err)
	}
	return n, nil
}

func parseTime(s, layout string) (time.Time, error) {
	t, err := utils.ConvertDateTime(s, layout)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}
	return t, nil
}

// splitCountryAndCity separates the free-text tail of a full line. The
// country name is the longest known name of code the tail starts with,
// otherwise the first token; the city is whatever follows.
func splitCountryAndCity(code string, tail []string) (name, city string) {
	if len(tail) == 0 {
		return models.Unknown, models.Unknown
	}

	n := 1
	for _, words := range countryNames(code) {
		if len(words) > n && len(tail) >= len(words) && hasWordPrefix(tail, words) {
			n = len(words)
		}
	}

	name = strings.Join(tail[:n], " ")
	city = strings.Join(tail[n:], " ")
	if city == "" {
		city = models.Unknown
	}
	return name, city
}

// countryAliases holds ISO 3166 and GeoIP spellings that differ from the
// CLDR English name.
var countryAliases = map[string][]string{
	"BO": {"Bolivia, Plurinational State of"},
	"CD": {"Congo, The Democratic Republic of the", "Democratic Republic of the Congo"},
	"CZ": {"Czech Republic"},
	"GB": {"Great Britain"},
	"HK": {"Hong Kong"},
	"IR": {"Iran, Islamic Republic of"},
	"KP": {"Korea, Democratic People's Republic of", "North Korea"},
	"KR": {"Korea, Republic of", "Republic of Korea"},
	"LA": {"Lao People's Democratic Republic"},
	"MD": {"Moldova, Republic of", "Republic of Moldova"},
	"MK": {"Macedonia, the Former Yugoslav Republic of"},
	"MO": {"Macao", "Macau"},
	"PS": {"Palestine, State of", "Palestinian Territory"},
	"RU": {"Russian Federation"},
	"SY": {"Syrian Arab Republic"},
	"TW": {"Taiwan, Province of China"},
	"TZ": {"Tanzania, United Republic of"},
	"US": {"United States of America"},
	"VE": {"Venezuela, Bolivarian Republic of"},
	"VN": {"Viet Nam"},
}

func countryNames(code string) [][]string {
	var names [][]string
	if region, err := language.ParseRegion(code); err == nil {
		names = append(names, strings.Fields(display.English.Regions().Name(region)))
	}
	for _, alias := range countryAliases[strings.ToUpper(code)] {
		names = append(names, strings.Fields(alias))
	}
	return names
}

func hasWordPrefix(tail, words []string) bool {
	for i, w := range words {
		if !strings.EqualFold(tail[i], w) {
			return false
		}
	}
	return true
}

// AttackerNormalizer converts top attackers feed lines into records.
type AttackerNormalizer struct {
	Now func() time.Time
}

func NewAttackerNormalizer() *AttackerNormalizer {
	return &AttackerNormalizer{Now: time.Now}
}

func (n *AttackerNormalizer) Normalize(lines []string) ([]models.AttackerRecord, []*RecordError) {
	if len(lines) == 0 {
		logger.Info("No data to transform.")
		return []models.AttackerRecord{}, nil
	}

	logger.Info("Transforming data...")
	records := make([]models.AttackerRecord, 0, len(lines))
	var skipped []*RecordError

	for i, line := range lines {
		rec, shape, err := ParseAttackerLine(line)
		if err != nil {
			rerr := &RecordError{Index: i, Raw: line, Err: err}
			if shape == ShapeUnrecognized {
				logger.Warnf("Skipping line with unexpected format: '%s'", line)
			} else {
				logger.Warnf("Skipping malformed line: '%s'. Error: %v", line, err)
			}
			skipped = append(skipped, rerr)
			continue
		}
		rec.IngestionTimestamp = n.Now().UTC()
		records = append(records, rec)
	}

	logger.Infof("Transformation complete for %d records (%d skipped).", len(records), len(skipped))
	return records, skipped
}
