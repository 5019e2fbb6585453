package command

import (
	"math"

	"github.com/tidwall/gjson"
)

// Decode maps an authenticated message to its command variant. Payload
// fields of the wrong JSON type are coerced rather than rejected.
func Decode(raw []byte) Command {
	doc := gjson.ParseBytes(raw)
	payload := doc.Get("payload")
	id := payload.Get("id").String()

	switch name := doc.Get("type").String(); CommandType(name) {
	case TypeUpsertSite:
		return UpsertSite{Site: decodeSitePayload(payload)}
	case TypeDeleteSite:
		return DeleteSite{ID: id}
	case TypePauseSite:
		return PauseSite{ID: id}
	case TypeResumeSite:
		return ResumeSite{ID: id}
	case TypeCheckNow:
		return CheckNow{ID: id}
	default:
		return UnknownCommand{Name: name}
	}
}

func decodeSitePayload(p gjson.Result) SitePayload {
	site := SitePayload{
		ID:              p.Get("id").String(),
		URL:             p.Get("url").String(),
		IntervalSeconds: intervalSeconds(p.Get("interval_s")),
		Mode:            p.Get("mode").String(),
		SelectorCSS:     p.Get("selector_css").String(),
		StartMarker:     p.Get("start_marker").String(),
		EndMarker:       p.Get("end_marker").String(),
		Regex:           p.Get("regex").String(),
		Headers:         map[string]string{},
	}

	p.Get("headers").ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.String {
			site.Headers[key.String()] = value.String()
		}
		return true
	})

	paused := p.Get("paused").Bool()
	site.Paused = &paused
	return site
}

// intervalSeconds reads interval_s as an unsigned 32-bit count. Zero,
// negative and non-numeric values become 0 so the default interval applies.
// Values above the range saturate.
func intervalSeconds(v gjson.Result) uint32 {
	f := v.Float()
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(f)
	}
}
