package library

import (
	"github.com/scholarbot/library-assistant/internal/model"
)

// searchPayload mirrors the catalog's search response envelope.
type searchPayload struct {
	Info struct {
		Total int `json:"total"`
	} `json:"info"`
	Docs []searchDoc `json:"docs"`
}

type searchDoc struct {
	PNX struct {
		Display struct {
			Title        []string `json:"title"`
			Creator      []string `json:"creator"`
			CreationDate []string `json:"creationdate"`
			Type         []string `json:"type"`
		} `json:"display"`
	} `json:"pnx"`
	Delivery struct {
		Link []docLink `json:"link"`
	} `json:"delivery"`
}

type docLink struct {
	DisplayLabel string `json:"displayLabel"`
	LinkURL      string `json:"linkURL"`
}

// normalizeDoc maps one provider record into a canonical Resource. Fields
// absent in the source stay zero-valued. Records without a title are not
// usable and report false.
func normalizeDoc(doc searchDoc) (model.Resource, bool) {
	display := doc.PNX.Display

	if len(display.Title) == 0 || display.Title[0] == "" {
		return model.Resource{}, false
	}

	res := model.Resource{
		Title:   display.Title[0],
		Authors: display.Creator,
	}
	if len(display.CreationDate) > 0 {
		res.Year = display.CreationDate[0]
	}
	if len(display.Type) > 0 {
		res.Type = display.Type[0]
	}
	res.URL = pickLink(doc.Delivery.Link)

	return res, true
}

// pickLink prefers the catalog's "View Online" link, falling back to the
// first link present.
func pickLink(links []docLink) string {
	for _, link := range links {
		if link.DisplayLabel == "View Online" && link.LinkURL != "" {
			return link.LinkURL
		}
	}
	if len(links) > 0 {
		return links[0].LinkURL
	}
	return ""
}

// normalizePayload maps the full response, dropping unusable records while
// preserving order. TotalMatched always reflects the provider's total.
func normalizePayload(payload searchPayload) *model.SearchResult {
	result := &model.SearchResult{
		TotalMatched: payload.Info.Total,
	}
	for _, doc := range payload.Docs {
		if res, ok := normalizeDoc(doc); ok {
			result.Resources = append(result.Resources, res)
		}
	}
	return result
}
