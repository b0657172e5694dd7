package gatt

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/leso-kn/ble"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// attributeView and groupingView are the JSON shape of DumpJSON's output —
// a debug/introspection dump, never the wire format.
type attributeView struct {
	Handle     ble.Handle `json:"handle"`
	Type       string     `json:"type"`
	Value      []byte     `json:"value,omitempty"`
	Readable   bool       `json:"readable"`
	Writable   bool       `json:"writable"`
	HasHandler bool       `json:"has_handler"`
}

type groupingView struct {
	Type        string          `json:"type"`
	StartHandle ble.Handle      `json:"start_handle"`
	EndHandle   ble.Handle      `json:"end_handle"`
	Active      bool            `json:"active"`
	Attributes  []attributeView `json:"attributes"`
}

// DumpJSON renders the database's groupings and attributes as JSON, for
// debugging and CLI inspection (cmd/attctl) — never parsed back in.
func (db *Database) DumpJSON() ([]byte, error) {
	groupings := db.Groupings()
	views := make([]groupingView, 0, len(groupings))
	for _, g := range groupings {
		gv := groupingView{
			Type:        g.Type().String(),
			StartHandle: g.StartHandle(),
			EndHandle:   g.EndHandle(),
			Active:      g.Active(),
			Attributes:  make([]attributeView, 0, len(g.attributes)),
		}
		for _, a := range g.Attributes() {
			value, _ := a.StaticValue()
			gv.Attributes = append(gv.Attributes, attributeView{
				Handle:     a.Handle(),
				Type:       a.Type().String(),
				Value:      value,
				Readable:   a.ReadRequirements().Allowed,
				Writable:   a.WriteRequirements().Allowed,
				HasHandler: a.readHandler != nil || a.writeHandler != nil,
			})
		}
		views = append(views, gv)
	}
	return jsonAPI.MarshalIndent(views, "", "  ")
}
