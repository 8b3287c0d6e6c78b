package epg

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"
)

// XMLTVTimeLayout is the timestamp layout used by XMLTV start and stop attributes.
const XMLTVTimeLayout = "20060102150405 -0700"

const generatorName = "epg-manager"

// tvXML represents the root element of an XMLTV document.
type tvXML struct {
	XMLName       xml.Name       `xml:"tv"`
	GeneratorName string         `xml:"generator-info-name,attr"`
	Channels      []channelXML   `xml:"channel"`
	Programmes    []programmeXML `xml:"programme"`
}

// channelXML represents a channel element. The second display-name carries
// the channel position, the way XMLTV grabbers publish channel numbers.
type channelXML struct {
	ID           string   `xml:"id,attr"`
	DisplayNames []string `xml:"display-name"`
}

// programmeXML represents a programme element.
type programmeXML struct {
	Start    string   `xml:"start,attr"`
	Stop     string   `xml:"stop,attr"`
	Channel  string   `xml:"channel,attr"`
	Title    string   `xml:"title"`
	Desc     string   `xml:"desc,omitempty"`
	Category string   `xml:"category,omitempty"`
	Icon     *iconXML `xml:"icon,omitempty"`
}

// iconXML represents an icon element with a src attribute.
type iconXML struct {
	Src string `xml:"src,attr"`
}

// WriteXMLTV renders the guide as an XMLTV document. Stored times carry no
// zone and are written with a +0000 offset.
func (g Guide) WriteXMLTV(w io.Writer) error {
	doc := tvXML{
		GeneratorName: generatorName,
		Channels:      make([]channelXML, 0, len(g.listings)),
		Programmes:    make([]programmeXML, 0, g.ProgramCount()),
	}

	for _, l := range g.listings {
		ch := l.Channel
		doc.Channels = append(doc.Channels, channelXML{
			ID:           ch.ID(),
			DisplayNames: []string{ch.Name(), strconv.Itoa(ch.Position())},
		})

		for _, p := range l.Programs {
			entry := programmeXML{
				Start:    xmltvTime(p.StartTime()),
				Stop:     xmltvTime(p.EndTime()),
				Channel:  ch.ID(),
				Title:    p.Title(),
				Desc:     p.Description(),
				Category: ch.Category(),
			}
			if p.ImageURL() != "" {
				entry.Icon = &iconXML{Src: p.ImageURL()}
			}
			doc.Programmes = append(doc.Programmes, entry)
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding XMLTV: %w", err)
	}
	return enc.Close()
}

func xmltvTime(t time.Time) string {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC).Format(XMLTVTimeLayout)
}
