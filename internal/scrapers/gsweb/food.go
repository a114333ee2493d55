package gsweb

import (
	"bytes"
	"errors"
	"fmt"
	"gsapp-backend/internal/components/chrono"
	"gsapp-backend/internal/components/telemetry"
	"gsapp-backend/internal/model"
	"gsapp-backend/pkg/htmlutil"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_parse_food_plan = "parse.food-plan"
)

const (
	foodRangeDateFormat = "02.01.2006"
	foodDayDateFormat   = "2006-01-02"
)

// MealSlots are the meal numbers read from the menu table, every other slot
// is ignored.
var MealSlots = []int{1, 2, 3, 7}

var nonDigitRegex = regexp.MustCompile(`\D`)

// ParseFoodPlan reads the cafeteria menu of one week, returning one offer per
// day sorted by date.
func ParseFoodPlan(body []byte, tel telemetry.API) ([]model.FoodOffer, error) {
	parseError := func(err error) error {
		return &ParseError{Document: "foodplan", Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, parseError(err)
	}
	doc.Find("sup").Remove()

	rangeText := htmlutil.CleanText(doc.Find("button#time-selector-dropdown").Text())
	week, from, till, err := parseWeekRange(rangeText)
	if err != nil {
		return nil, parseError(err)
	}
	if week < 0 || week > 53 {
		tel.ReportWarning(
			report_parse_food_plan,
			fmt.Errorf("calendar week %d is probably invalid", week),
			rangeText,
		)
	}
	tel.ReportDebug("parsed food plan range", week, from, till)

	offers := map[string]*model.FoodOffer{}
	table := doc.Find("table#menu-table_KW")
	for _, slot := range MealSlots {
		// attribute names are lowercased by the html parser
		table.Find(fmt.Sprintf(`td[mealid="0%d"]`, slot)).Each(func(_ int, cell *goquery.Selection) {
			day := strings.TrimSpace(cell.AttrOr("day", ""))
			date, err := time.ParseInLocation(foodDayDateFormat, day, chrono.Berlin())
			if err != nil {
				tel.ReportWarning(
					report_parse_food_plan,
					fmt.Errorf("parse meal day: %w", err),
					slot,
				)
				return
			}

			offer, ok := offers[day]
			if !ok {
				offer = &model.FoodOffer{
					Date:     date,
					FromDate: from,
					TillDate: till,
				}
				offers[day] = offer
			}
			offer.Foods = append(offer.Foods, parseFood(slot, cell))
		})
	}

	result := make([]model.FoodOffer, 0, len(offers))
	for _, offer := range offers {
		result = append(result, *offer)
	}
	slices.SortFunc(result, func(a, b model.FoodOffer) int {
		return a.Date.Compare(b.Date)
	})

	return result, nil
}

func parseFood(slot int, cell *goquery.Selection) model.Food {
	additives := []string{}
	raw := strings.ReplaceAll(cell.Find("sub").First().Text(), " ", "")
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		additives = append(additives, token)
	}

	name := cell.Find("span[id=mealtext]").First()
	if name.Length() == 0 {
		name = cell
	}

	return model.Food{
		MealSlot:  slot,
		Name:      htmlutil.CleanText(name.Text()),
		Additives: additives,
	}
}

// parseWeekRange reads the range control text, which looks like
// `KW 42 || 16.10. - 20.10.2023`. The start of the range may omit its year.
func parseWeekRange(text string) (week int, from, till time.Time, err error) {
	parts := strings.Split(text, "||")
	if len(parts) < 2 {
		return 0, time.Time{}, time.Time{}, fmt.Errorf("unexpected range text %q", text)
	}

	week, err = strconv.Atoi(nonDigitRegex.ReplaceAllString(parts[0], ""))
	if err != nil {
		return 0, time.Time{}, time.Time{}, fmt.Errorf("parse calendar week: %w", err)
	}

	bounds := strings.Split(parts[1], "-")
	if len(bounds) < 2 {
		return 0, time.Time{}, time.Time{}, errors.New("range has no end date")
	}

	till, err = time.ParseInLocation(foodRangeDateFormat, strings.TrimSpace(bounds[1]), chrono.Berlin())
	if err != nil {
		return 0, time.Time{}, time.Time{}, fmt.Errorf("parse end date: %w", err)
	}

	fromText := strings.TrimSpace(bounds[0])
	from, err = time.ParseInLocation(foodRangeDateFormat, fromText, chrono.Berlin())
	if err != nil {
		withYear := strings.TrimSuffix(fromText, ".") + "." + strconv.Itoa(till.Year())
		from, err = time.ParseInLocation(foodRangeDateFormat, withYear, chrono.Berlin())
		if err != nil {
			return 0, time.Time{}, time.Time{}, fmt.Errorf("parse start date: %w", err)
		}
		// weeks spanning new year
		if from.After(till) {
			from = from.AddDate(-1, 0, 0)
		}
	}

	return week, from, till, nil
}
