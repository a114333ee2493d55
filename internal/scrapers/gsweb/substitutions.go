package gsweb

import (
	"bytes"
	"errors"
	"fmt"
	"gsapp-backend/internal/components/telemetry"
	"gsapp-backend/internal/model"
	"gsapp-backend/pkg/htmlutil"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/atom"
)

const (
	report_parse_substitutions = "parse.substitutions"
)

const (
	holidayMarker = "Beschilderung beachten!"
	noDateText    = "(kein Datum)"
	noteLabel     = "Hinweis:"

	// the website answers with a bare "E" when the plan could not be rendered
	upstreamErrorBody = "E"
)

const (
	strategyPrimary  = "primary"
	strategyFallback = "fallback"
)

// ParseSubstitutions reads a substitution plan page. The structural strategy
// runs first, when it fails or finds no rows the page is read again as raw
// text. A holiday placeholder ends parsing immediately with a HolidayError.
func ParseSubstitutions(body []byte, tel telemetry.API) (model.SubstitutionSet, error) {
	set, err := parseSubstitutionsPrimary(body)
	if IsHoliday(err) {
		return model.SubstitutionSet{}, err
	}
	if err == nil && len(set.Substitutions) > 0 {
		return set, nil
	}

	if err != nil {
		tel.ReportWarning(report_parse_substitutions, err)
	} else {
		tel.ReportDebug("primary strategy found no rows, using fallback")
	}

	return parseSubstitutionsFallback(string(body))
}

func parseSubstitutionsPrimary(body []byte) (model.SubstitutionSet, error) {
	parseError := func(err error) error {
		return &ParseError{Document: "substitutions", Strategy: strategyPrimary, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return model.SubstitutionSet{}, parseError(err)
	}

	date := noDateText
	if text := htmlutil.CleanText(doc.Find("td[class*=vpUeberschr]").First().Text()); text != "" {
		date = text
	}
	if date == holidayMarker {
		return model.SubstitutionSet{}, &HolidayError{Date: date}
	}

	notes := htmlutil.CleanText(doc.Find("td[class=vpTextLinks]").First().Text())
	notes = strings.TrimSpace(strings.TrimPrefix(notes, noteLabel))

	rows := doc.Find("tr[id=Svertretungen], tr[id=Svertretungen] ~ tr")
	if rows.Length() == 0 {
		// older layouts have no row anchor, the rows start at the row of the
		// first centered cell instead
		legacy := doc.Find("td[class*=vpTextZentriert]").First().Parent()
		rows = legacy.AddSelection(legacy.NextAllFiltered("tr"))
	}

	substitutions := make([]model.Substitution, 0, rows.Length())
	var rowErr error
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Children()
		if cells.Length() != model.SubstitutionFieldCount {
			rowErr = fmt.Errorf(
				"row %d: expected %d cells, got %d",
				i, model.SubstitutionFieldCount, cells.Length(),
			)
			return false
		}

		var fields [model.SubstitutionFieldCount]string
		cells.Each(func(col int, cell *goquery.Selection) {
			fields[col] = htmlutil.CleanText(cell.Text())
		})
		isNew := htmlutil.ContainsElement(row.Get(0), atom.Strong, atom.B)

		substitutions = append(substitutions, model.NewSubstitution(fields, isNew))
		return true
	})
	if rowErr != nil {
		return model.SubstitutionSet{}, parseError(rowErr)
	}

	return model.SubstitutionSet{
		Date:          date,
		Notes:         notes,
		Substitutions: substitutions,
	}, nil
}

const (
	fallbackDateStart  = `<td colspan="7" class="rundeEckenOben vpUeberschr">`
	fallbackNoteStart  = `<tr id="Shinweis">`
	fallbackTableStart = `<td class="vpTextZentriert">`
)

// no html decoder runs in the fallback path, so the entities the website
// uses for german text are replaced literally
var entityReplacer = strings.NewReplacer(
	"&uuml;", "ü",
	"&Uuml;", "Ü",
	"&auml;", "ä",
	"&Auml;", "Ä",
	"&ouml;", "ö",
	"&Ouml;", "Ö",
	"&szlig;", "ß",
)

var (
	wordRegex    = regexp.MustCompile(`\w`)
	newlineRegex = regexp.MustCompile(`[\r\n]+`)
)

var fallbackNoise = map[string]struct{}{
	"setFrameHeight();":             {},
	"pageTracker._trackPageview();": {},
}

var errUpstreamError = errors.New("website returned its error marker")

// between returns the text after the first occurrence of start up to the
// next occurrence of end, or up to the end of s when end does not follow.
func between(s, start, end string) (string, bool) {
	_, after, ok := strings.Cut(s, start)
	if !ok {
		return "", false
	}
	before, _, _ := strings.Cut(after, end)
	return before, true
}

func parseSubstitutionsFallback(body string) (model.SubstitutionSet, error) {
	parseError := func(err error) error {
		return &ParseError{Document: "substitutions", Strategy: strategyFallback, Err: err}
	}

	if strings.TrimSpace(body) == upstreamErrorBody {
		return model.SubstitutionSet{}, parseError(errUpstreamError)
	}

	var date string
	if raw, ok := between(body, fallbackDateStart, "</td>"); ok {
		date = htmlutil.CleanText(entityReplacer.Replace(htmlutil.StripTags(raw)))
	}
	if date == holidayMarker {
		return model.SubstitutionSet{}, &HolidayError{Date: date}
	}

	var notes string
	if raw, ok := between(body, fallbackNoteStart, "</tr>"); ok {
		raw = strings.ReplaceAll(raw, "Hinweis: <br />", "")
		raw = strings.ReplaceAll(raw, "<br />", "· ")
		raw = htmlutil.StripTags(raw)
		raw = entityReplacer.Replace(raw)
		raw = newlineRegex.ReplaceAllString(raw, "")
		notes = strings.TrimSpace(raw)
	}

	_, table, ok := strings.Cut(body, fallbackTableStart)
	if !ok {
		return model.SubstitutionSet{}, parseError(fmt.Errorf("could not find %q", fallbackTableStart))
	}

	tokens := fallbackTokens(table)
	substitutions := make([]model.Substitution, 0, len(tokens)/model.SubstitutionFieldCount)
	for i := 0; i+model.SubstitutionFieldCount <= len(tokens); i += model.SubstitutionFieldCount {
		var fields [model.SubstitutionFieldCount]string
		copy(fields[:], tokens[i:i+model.SubstitutionFieldCount])
		substitutions = append(substitutions, model.NewSubstitution(fields, false))
	}
	if len(substitutions) == 0 {
		return model.SubstitutionSet{}, &NoEntriesError{}
	}

	return model.SubstitutionSet{
		Date:          date,
		Notes:         notes,
		Substitutions: substitutions,
	}, nil
}

// fallbackTokens turns the raw table markup into a flat list of cell texts,
// one per non-empty line.
func fallbackTokens(table string) []string {
	var tokens []string
	for _, line := range strings.Split(table, "\n") {
		line = htmlutil.StripTags(line)
		line = entityReplacer.Replace(line)
		line = strings.ReplaceAll(line, "\t", "")
		line = strings.TrimSpace(line)

		if line == "" ||
			strings.HasPrefix(line, "var") ||
			strings.HasPrefix(line, "document.write") {
			continue
		}
		if _, noise := fallbackNoise[line]; noise {
			continue
		}
		if !wordRegex.MatchString(line) && !strings.Contains(line, "##") {
			continue
		}
		tokens = append(tokens, line)
	}
	return tokens
}
