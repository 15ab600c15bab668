package domain

import "strconv"

const (
	DefaultPageRange   = 5
	DefaultMarginPages = 1
)

type PageItemKind string

const (
	PageItemPrevious PageItemKind = "previous"
	PageItemPage     PageItemKind = "page"
	PageItemBreak    PageItemKind = "break"
	PageItemNext     PageItemKind = "next"
)

// PageItem is one indicator of the pagination control. Index is the 0-based
// page the indicator selects when activated.
type PageItem struct {
	Kind     PageItemKind `json:"kind"`
	Index    int          `json:"index"`
	Label    string       `json:"label"`
	Active   bool         `json:"active"`
	Disabled bool         `json:"disabled"`
}

// Paginate lays out page indicators around forcePage (0-based). The first and
// last marginPages pages are always shown, pageRange pages are shown around the
// selected one and the gaps collapse into a single break.
func Paginate(pageCount, forcePage, pageRange, marginPages int) []PageItem {
	if pageCount < 1 {
		return nil
	}

	selected := forcePage
	if selected < 0 {
		selected = 0
	}

	items := make([]PageItem, 0, pageRange+2*marginPages+4)
	items = append(items, PageItem{
		Kind:     PageItemPrevious,
		Index:    max(selected-1, 0),
		Label:    "←",
		Disabled: selected == 0,
	})

	pageItem := func(index int) PageItem {
		return PageItem{
			Kind:   PageItemPage,
			Index:  index,
			Label:  strconv.Itoa(index + 1),
			Active: index == selected,
		}
	}

	if pageCount <= pageRange {
		for index := 0; index < pageCount; index++ {
			items = append(items, pageItem(index))
		}
	} else {
		leftSide := pageRange / 2
		rightSide := pageRange - leftSide

		if selected > pageCount-rightSide {
			rightSide = pageCount - selected
			leftSide = pageRange - rightSide
		} else if selected < leftSide {
			leftSide = selected
			rightSide = pageRange - leftSide
		}

		upper := selected + rightSide
		if selected == 0 && pageRange > 1 {
			upper = selected + rightSide - 1
		}

		for index := 0; index < pageCount; index++ {
			page := index + 1

			switch {
			case page <= marginPages,
				page > pageCount-marginPages,
				index >= selected-leftSide && index <= upper:
				items = append(items, pageItem(index))
			case items[len(items)-1].Kind != PageItemBreak:
				items = append(items, PageItem{
					Kind:  PageItemBreak,
					Index: breakJump(selected, index, pageCount, pageRange),
					Label: "…",
				})
			}
		}
	}

	items = append(items, PageItem{
		Kind:     PageItemNext,
		Index:    min(selected+1, pageCount-1),
		Label:    "→",
		Disabled: selected >= pageCount-1,
	})

	return items
}

func breakJump(selected, breakIndex, pageCount, pageRange int) int {
	if selected < breakIndex {
		return min(selected+pageRange, pageCount-1)
	}

	return max(selected-pageRange, 0)
}
