package gsweb

import (
	"bytes"
	"fmt"
	"gsapp-backend/internal/model"
	"gsapp-backend/pkg/htmlutil"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	staffCodeLabel = "Kürzel:"
	staffPageQuery = "seite"
	// maxStaffPages bounds the pages loaded from one directory.
	maxStaffPages = 50
)

// StaffPage is a single page of the staff directory.
type StaffPage struct {
	Teachers []model.Teacher
	// LastPage is the number of the last directory page, it is 1 when the
	// page has no pagination control.
	LastPage int
	// PaginationErr is set when the pagination control exists but the last
	// page could not be read from it or is out of range. Teachers are still
	// valid then.
	PaginationErr error
}

// ParseStaffPage reads the teachers of one staff directory page.
func ParseStaffPage(body []byte) (StaffPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return StaffPage{}, &ParseError{Document: "staff", Err: err}
	}

	page := StaffPage{LastPage: 1}

	rows := doc.Find("table.eAusgeben > tbody > tr")
	rows.Each(func(i int, row *goquery.Selection) {
		// header and footer rows
		if i == 0 || i == rows.Length()-1 {
			return
		}

		cell := row.Find("td.eEintragGrau, td.eEintragWeiss").First()
		if cell.Length() == 0 {
			return
		}
		before, after, ok := htmlutil.SplitAtBreak(cell.Get(0))
		if !ok {
			return
		}

		_, code, found := strings.Cut(after, staffCodeLabel)
		if !found {
			return
		}
		code, _, _ = strings.Cut(code, "\n")
		page.Teachers = append(page.Teachers, model.Teacher{
			ShortName: htmlutil.CleanText(code),
			LongName:  htmlutil.CleanText(before),
		})
	})

	anchor := doc.Find("table.eAusgeben > tbody > tr:last-child > td > a:nth-last-child(2)").First()
	if anchor.Length() > 0 {
		lastPage, err := parsePageNumber(anchor.AttrOr("href", ""))
		switch {
		case err != nil:
			page.PaginationErr = &ParseError{Document: "staff", Strategy: "pagination", Err: err}
		case lastPage < 1:
			page.PaginationErr = &ParseError{
				Document: "staff",
				Strategy: "pagination",
				Err:      fmt.Errorf("invalid last page %d", lastPage),
			}
		case lastPage > maxStaffPages:
			page.LastPage = maxStaffPages
			page.PaginationErr = &ParseError{
				Document: "staff",
				Strategy: "pagination",
				Err:      fmt.Errorf("last page %d exceeds %d, loading the first %d", lastPage, maxStaffPages, maxStaffPages),
			}
		default:
			page.LastPage = lastPage
		}
	}

	return page, nil
}

func parsePageNumber(href string) (int, error) {
	if link, err := url.Parse(href); err == nil {
		if value := link.Query().Get(staffPageQuery); value != "" {
			return strconv.Atoi(value)
		}
	}

	// hrefs are not always valid urls, fall back to reading the digits after
	// the parameter name
	_, after, ok := strings.Cut(href, staffPageQuery+"=")
	if !ok {
		return 0, fmt.Errorf("no %q parameter in %q", staffPageQuery, href)
	}
	end := strings.IndexFunc(after, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if end >= 0 {
		after = after[:end]
	}
	return strconv.Atoi(after)
}

// staffPageUrl returns the url of the 1-based page of the directory.
func staffPageUrl(base string, page int) (string, error) {
	link, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	query := link.Query()
	query.Set(staffPageQuery, strconv.Itoa(page))
	link.RawQuery = query.Encode()
	return link.String(), nil
}
