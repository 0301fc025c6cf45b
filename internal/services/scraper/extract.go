package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"UniPredict/internal/domain/models"
)

// tableRows reads a table as header-keyed rows. Headers are every <th> in the
// table; each later row with cells is zipped against them.
func tableRows(table *goquery.Selection) []map[string]string {
	var headers []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, text(th))
	})

	var rows []map[string]string
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, text(td))
		})
		if len(cells) == 0 {
			return
		}
		n := min(len(headers), len(cells))
		if n == 0 {
			return
		}
		row := make(map[string]string, n)
		for j := 0; j < n; j++ {
			row[headers[j]] = cells[j]
		}
		rows = append(rows, row)
	})
	return rows
}

func extractFeeTables(doc *goquery.Document) *models.Content {
	c := &models.Content{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		c.Rows = append(c.Rows, tableRows(table)...)
	})
	return c
}

// sectionKey turns "Ph. D Programs" into "ph._d_programs".
func sectionKey(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}

// extractFeeSections reads, for each title, the first table after the first
// heading that mentions it.
func extractFeeSections(doc *goquery.Document, titles []string) *models.Content {
	c := &models.Content{Sections: make(map[string][]map[string]string)}
	elems := elementsInOrder(doc.Selection)

	for _, title := range titles {
		start := -1
		for i, n := range elems {
			if isHeading(n) && strings.Contains(text(goquery.NewDocumentFromNode(n).Selection), title) {
				start = i
				break
			}
		}
		if start < 0 {
			continue
		}
		for _, n := range elems[start+1:] {
			if n.Data == "table" {
				if rows := tableRows(goquery.NewDocumentFromNode(n).Selection); len(rows) > 0 {
					c.Sections[sectionKey(title)] = rows
				}
				break
			}
		}
	}
	return c
}

// extractScholarship collects paragraphs and list items that follow the <h2>
// naming the section, up to the next h1 or h2.
func extractScholarship(doc *goquery.Document, title string) *models.Content {
	c := &models.Content{}
	want := strings.ToLower(title)

	heading := doc.Find("h2").FilterFunction(func(_ int, h *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(text(h)), want)
	}).First()
	if heading.Length() == 0 {
		return c
	}

	for node := heading.Next(); node.Length() > 0; node = node.Next() {
		if node.Is("h1, h2") {
			break
		}
		switch {
		case node.Is("p"):
			c.Paragraphs = append(c.Paragraphs, text(node))
		case node.Is("ul"):
			node.Find("li").Each(func(_ int, li *goquery.Selection) {
				c.Paragraphs = append(c.Paragraphs, "- "+text(li))
			})
		}
	}
	return c
}

const eventDateMarker = "Event Date:"

func extractEventsAnchor(doc *goquery.Document) *models.Content {
	c := &models.Content{}
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		t := text(a)
		if !strings.Contains(t, eventDateMarker) {
			return
		}
		parts := strings.Split(t, eventDateMarker)
		ev := models.Event{Title: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			d := strings.TrimSpace(parts[1])
			ev.Date = &d
		}
		c.Events = append(c.Events, ev)
	})
	return c
}

func extractEventsTable(doc *goquery.Document) *models.Content {
	c := &models.Content{}
	table := doc.Find("table").First()
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}
		d := text(cells.Eq(1))
		c.Events = append(c.Events, models.Event{Title: text(cells.Eq(0)), Date: &d})
	})
	return c
}

var eventDatePattern = regexp.MustCompile(
	`(\b\d{1,2}(?:st|nd|rd|th)?\s+\w+,\s*\d{4}\b|\b\w+\s+\d{1,2}\s*-\s*\d{1,2},?\s*\d{4}\b|\b\d{1,2}\s*-\s*\d{1,2}\s*\w+\s*\d{4}\b)`)

var navigationWords = []string{"breadcrumb", "home", "events", "pagination", "quick", "links"}

// extractEventsText pairs every line that looks like a date with the line
// after it, skipping navigation chrome.
func extractEventsText(doc *goquery.Document) *models.Content {
	c := &models.Content{}
	root := doc.Find("div.content").First()
	if root.Length() == 0 {
		root = doc.Selection
	}

	lines := strippedStrings(root)
	for i, line := range lines {
		if !eventDatePattern.MatchString(line) || i+1 >= len(lines) {
			continue
		}
		title := lines[i+1]
		if isNavigation(title) {
			continue
		}
		d := line
		c.Events = append(c.Events, models.Event{Title: title, Date: &d})
	}
	return c
}

func isNavigation(title string) bool {
	lower := strings.ToLower(title)
	for _, w := range navigationWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
