package httpapi

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/stagebridge/stagebridge/internal/common"
)

// contentKind is the negotiated representation of a request or response
// document.
type contentKind int

const (
	kindUnknown contentKind = iota
	kindXML
	kindJSON
)

// kindFromMime classifies a media type. Suffix notation
// ("application/vnd.something+xml") is accepted alongside the plain types.
func kindFromMime(v string) contentKind {
	mediaType, _, err := mime.ParseMediaType(v)
	if err != nil {
		return kindUnknown
	}
	if !strings.HasPrefix(mediaType, "application/") {
		return kindUnknown
	}
	sub := strings.TrimPrefix(mediaType, "application/")
	switch {
	case sub == "xml" || strings.HasSuffix(sub, "+xml"):
		return kindXML
	case sub == "json" || strings.HasSuffix(sub, "+json"):
		return kindJSON
	default:
		return kindUnknown
	}
}

// responseKind picks the response representation: the Accept header wins,
// the request's Content-Type is the fallback.
func responseKind(r *http.Request) contentKind {
	if k := kindFromMime(r.Header.Get("Accept")); k != kindUnknown {
		return k
	}
	return kindFromMime(r.Header.Get("Content-Type"))
}

// decodeRequest unmarshals the body according to its Content-Type.
func decodeRequest(r *http.Request, v any) error {
	switch kindFromMime(r.Header.Get("Content-Type")) {
	case kindXML:
		if err := xml.NewDecoder(r.Body).Decode(v); err != nil {
			return fmt.Errorf("%w: decoding xml request: %v", common.ErrorValidation, err)
		}
		return nil
	case kindJSON:
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return fmt.Errorf("%w: decoding json request: %v", common.ErrorValidation, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: expected an application/xml or application/json request", common.ErrorValidation)
	}
}

// respond writes the document in the negotiated representation.
func respond(w http.ResponseWriter, r *http.Request, status int, doc any) error {
	switch responseKind(r) {
	case kindJSON:
		body, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, err = w.Write(body)
		return err
	case kindXML:
		return respondXML(w, status, doc)
	default:
		return fmt.Errorf("%w: could not determine response content type", common.ErrorValidation)
	}
}

// respondXML always writes XML, for endpoints that predate negotiation.
func respondXML(w http.ResponseWriter, status int, doc any) error {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}
