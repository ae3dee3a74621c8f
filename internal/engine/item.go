package engine

import (
	"encoding/json"

	"github.com/felixgeelhaar/skillquest/internal/rules"
)

// ItemType distinguishes catalog resources from habit and routine actions.
type ItemType string

const (
	ItemAction   ItemType = "action"
	ItemResource ItemType = "resource"
)

// Item is one plan entry. Resource items carry the catalog fields and either
// a Domain or a Course tag; action items carry a title, an optional Domain
// and a week.
type Item struct {
	Type     ItemType `json:"type"`
	Domain   string   `json:"domain,omitempty"`
	Course   string   `json:"course,omitempty"`
	Title    string   `json:"title"`
	URL      string   `json:"url,omitempty"`
	Provider string   `json:"provider,omitempty"`
	ResType  string   `json:"resType,omitempty"`
	Est      string   `json:"est,omitempty"`
	Week     int      `json:"week"`
}

func resourceItem(r rules.Resource) Item {
	return Item{
		Type:     ItemResource,
		Title:    r.Title,
		URL:      r.URL,
		Provider: r.Provider,
		ResType:  r.Type,
		Est:      r.Est,
	}
}

// MarshalJSON keeps the two wire shapes distinct: resource items always
// carry url, provider, resType and est, action items never do.
func (it Item) MarshalJSON() ([]byte, error) {
	if it.Type == ItemResource {
		return json.Marshal(struct {
			Type     ItemType `json:"type"`
			Domain   string   `json:"domain,omitempty"`
			Course   string   `json:"course,omitempty"`
			Title    string   `json:"title"`
			URL      string   `json:"url"`
			Provider string   `json:"provider"`
			ResType  string   `json:"resType"`
			Est      string   `json:"est"`
			Week     int      `json:"week"`
		}{it.Type, it.Domain, it.Course, it.Title, it.URL, it.Provider, it.ResType, it.Est, it.Week})
	}
	return json.Marshal(struct {
		Type   ItemType `json:"type"`
		Domain string   `json:"domain,omitempty"`
		Title  string   `json:"title"`
		Week   int      `json:"week"`
	}{it.Type, it.Domain, it.Title, it.Week})
}
