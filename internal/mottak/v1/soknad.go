// Package v1 holds the v1 soknad wire format: parsing of the aliased
// historical key-sets, enrichment, and the outgoing serialization.
package v1

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"soknad-mottak/internal/common/errors"
	"soknad-mottak/internal/gateway/aktoer"
	"soknad-mottak/internal/gateway/dokument"
)

// Aliased key-sets for the same logical fields across historical wire
// formats, tried in order. New aliases are additive; business logic never
// sees raw keys.
var (
	soknadKeysSoker         = []string{"søker", "soker"}
	soknadKeysFodselsnummer = []string{"fødselsnummer", "fodselsnummer"}
	soknadKeysAktoerID      = []string{"aktørId", "aktoer_id"}
	soknadKeysSoknadID      = []string{"søknadId", "soknad_id"}
	soknadKeysContentType   = []string{"contentType", "content_type"}
)

const (
	keyVedlegg     = "vedlegg"
	keyVedleggURLs = "vedlegg_urls"
	keyContent     = "content"
	keyTitle       = "title"
)

// Vedlegg is one attachment: raw bytes plus content type and title.
// Immutable once constructed.
type Vedlegg struct {
	Content     []byte
	ContentType string
	Title       string
}

// SoknadIncoming is the parsed inbound submission. The free-form domain
// payload stays opaque in doc; only the fields the gateway needs are lifted
// out. Unknown extra fields are preserved, never rejected.
type SoknadIncoming struct {
	doc      map[string]json.RawMessage
	soker    map[string]json.RawMessage
	sokerKey string

	Fodselsnummer string
	AktoerID      string // pre-resolved actor id, empty when absent
	SoknadID      string // client-supplied idempotency hint, empty when absent
	Vedlegg       []Vedlegg
}

// ParseSoknad parses raw inbound JSON into a validated-parseable submission.
// Base64 decode failures and a missing applicant object are fatal parse
// errors; rule violations are the validator's job.
func ParseSoknad(raw []byte) (*SoknadIncoming, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.NewParseError("request body is not a JSON object", err)
	}

	sokerRaw, sokerKey, ok := firstRaw(doc, soknadKeysSoker)
	if !ok {
		return nil, errors.NewParseError("soknad is missing the applicant object", nil)
	}
	var soker map[string]json.RawMessage
	if err := json.Unmarshal(sokerRaw, &soker); err != nil {
		return nil, errors.NewParseError("applicant is not a JSON object", err)
	}

	incoming := &SoknadIncoming{
		doc:      doc,
		soker:    soker,
		sokerKey: sokerKey,
	}
	incoming.Fodselsnummer, _ = firstString(soker, soknadKeysFodselsnummer)
	incoming.AktoerID, _ = firstString(soker, soknadKeysAktoerID)
	incoming.SoknadID, _ = firstString(doc, soknadKeysSoknadID)

	vedlegg, err := parseVedlegg(doc)
	if err != nil {
		return nil, err
	}
	incoming.Vedlegg = vedlegg
	delete(doc, keyVedlegg)

	return incoming, nil
}

// Outgoing builds the enriched submission as a new value: the raw
// attachment list is gone, the stored URIs and soknad id are in, and the
// resolved aktoer id is stamped on the applicant. The incoming value is
// not mutated.
func (s *SoknadIncoming) Outgoing(soknadID string, aktoerID aktoer.AktoerID, vedleggURLs []string) (*SoknadOutgoing, error) {
	doc := make(map[string]json.RawMessage, len(s.doc)+2)
	for k, v := range s.doc {
		doc[k] = v
	}

	soker := make(map[string]json.RawMessage, len(s.soker)+1)
	for k, v := range s.soker {
		soker[k] = v
	}
	if err := putJSON(soker, soknadKeysAktoerID[0], string(aktoerID)); err != nil {
		return nil, err
	}
	// Drop a legacy alias if the applicant carried one; the outgoing format
	// has a single aktoer id key.
	delete(soker, soknadKeysAktoerID[1])

	sokerRaw, err := json.Marshal(soker)
	if err != nil {
		return nil, err
	}
	doc[s.sokerKey] = sokerRaw

	if err := putJSON(doc, keyVedleggURLs, vedleggURLs); err != nil {
		return nil, err
	}
	if err := putJSON(doc, soknadKeysSoknadID[0], soknadID); err != nil {
		return nil, err
	}
	delete(doc, soknadKeysSoknadID[1])

	return &SoknadOutgoing{
		doc:         doc,
		SoknadID:    soknadID,
		VedleggURLs: vedleggURLs,
	}, nil
}

// SoknadOutgoing is the enriched submission ready for the outbound topic.
type SoknadOutgoing struct {
	doc         map[string]json.RawMessage
	SoknadID    string
	VedleggURLs []string
}

// Data serializes the enriched payload. Map marshaling sorts keys, so the
// output is deterministic for a given logical content.
func (s *SoknadOutgoing) Data() (json.RawMessage, error) {
	return json.Marshal(s.doc)
}

// Dokumenter converts the attachments into store documents.
func (s *SoknadIncoming) Dokumenter() []dokument.Dokument {
	dokumenter := make([]dokument.Dokument, 0, len(s.Vedlegg))
	for _, v := range s.Vedlegg {
		dokumenter = append(dokumenter, dokument.Dokument{
			Content:     v.Content,
			ContentType: v.ContentType,
			Title:       v.Title,
		})
	}
	return dokumenter
}

func parseVedlegg(doc map[string]json.RawMessage) ([]Vedlegg, error) {
	raw, ok := doc[keyVedlegg]
	if !ok {
		return nil, nil
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.NewParseError("vedlegg is not a JSON array", err)
	}

	vedlegg := make([]Vedlegg, 0, len(items))
	for i, item := range items {
		encoded, ok := stringValue(item, keyContent)
		if !ok {
			return nil, errors.NewParseError(fmt.Sprintf("vedlegg[%d] is missing content", i), nil)
		}
		content, err := decodeBase64(encoded)
		if err != nil {
			return nil, errors.NewParseError(fmt.Sprintf("vedlegg[%d] content is not valid base64", i), err)
		}
		contentType, _ := firstString(item, soknadKeysContentType)
		title, _ := stringValue(item, keyTitle)
		vedlegg = append(vedlegg, Vedlegg{
			Content:     content,
			ContentType: contentType,
			Title:       title,
		})
	}
	return vedlegg, nil
}

func decodeBase64(encoded string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(encoded); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(encoded)
}

func firstRaw(m map[string]json.RawMessage, keys []string) (json.RawMessage, string, bool) {
	for _, key := range keys {
		if raw, ok := m[key]; ok {
			return raw, key, true
		}
	}
	return nil, "", false
}

func firstString(m map[string]json.RawMessage, keys []string) (string, bool) {
	for _, key := range keys {
		if value, ok := stringValue(m, key); ok {
			return value, true
		}
	}
	return "", false
}

func stringValue(m map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := m[key]
	if !ok {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

func putJSON(m map[string]json.RawMessage, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m[key] = raw
	return nil
}
