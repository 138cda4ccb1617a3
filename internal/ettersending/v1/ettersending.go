// Package v1 holds the v1 ettersending wire format. An ettersending sends
// additional attachments for an earlier soknad and carries a slimmer
// payload with snake_case keys only.
package v1

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"soknad-mottak/internal/common/errors"
	"soknad-mottak/internal/gateway/aktoer"
	"soknad-mottak/internal/gateway/dokument"
)

const (
	keySoker         = "soker"
	keyAktoerID      = "aktoer_id"
	keyFodselsnummer = "fodselsnummer"
	keyVedlegg       = "vedlegg"
	keyVedleggURLs   = "vedlegg_urls"
	keySoknadID      = "soknad_id"
	keyContent       = "content"
	keyContentType   = "content_type"
	keyTitle         = "title"
)

// Vedlegg is one attachment in an ettersending.
type Vedlegg struct {
	Content     []byte
	ContentType string
	Title       string
}

// Incoming is the parsed inbound ettersending.
type Incoming struct {
	doc   map[string]json.RawMessage
	soker map[string]json.RawMessage

	AktoerID      string
	Fodselsnummer string
	SoknadID      string
	Vedlegg       []Vedlegg
}

// Parse parses raw inbound JSON. Structural problems are fatal parse
// errors; rule violations are left for Validate.
func Parse(raw []byte) (*Incoming, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.NewParseError("request body is not a JSON object", err)
	}

	sokerRaw, ok := doc[keySoker]
	if !ok {
		return nil, errors.NewParseError("ettersending is missing the applicant object", nil)
	}
	var soker map[string]json.RawMessage
	if err := json.Unmarshal(sokerRaw, &soker); err != nil {
		return nil, errors.NewParseError("applicant is not a JSON object", err)
	}

	incoming := &Incoming{doc: doc, soker: soker}
	incoming.AktoerID, _ = stringValue(soker, keyAktoerID)
	incoming.Fodselsnummer, _ = stringValue(soker, keyFodselsnummer)
	incoming.SoknadID, _ = stringValue(doc, keySoknadID)

	vedlegg, err := parseVedlegg(doc)
	if err != nil {
		return nil, err
	}
	incoming.Vedlegg = vedlegg
	delete(doc, keyVedlegg)

	return incoming, nil
}

// Validate collects every rule violation before failing.
func Validate(s *Incoming) error {
	var violations []errors.Violation

	if s.AktoerID == "" && s.Fodselsnummer == "" {
		violations = append(violations, errors.Violation{
			ParameterName: "soker.aktoer_id",
			ParameterType: errors.ParameterTypeEntity,
			Reason:        "enten aktoer_id eller fodselsnummer må være satt",
			InvalidValue:  s.AktoerID,
		})
	}
	if s.AktoerID != "" && !isDigits(s.AktoerID) {
		violations = append(violations, errors.Violation{
			ParameterName: "soker.aktoer_id",
			ParameterType: errors.ParameterTypeEntity,
			Reason:        "aktoer_id må kun inneholde siffer",
			InvalidValue:  s.AktoerID,
		})
	}
	if s.Fodselsnummer != "" && (len(s.Fodselsnummer) != 11 || !isDigits(s.Fodselsnummer)) {
		violations = append(violations, errors.Violation{
			ParameterName: "soker.fodselsnummer",
			ParameterType: errors.ParameterTypeEntity,
			Reason:        "fodselsnummer må bestå av 11 siffer",
			InvalidValue:  s.Fodselsnummer,
		})
	}
	if len(s.Vedlegg) == 0 {
		violations = append(violations, errors.Violation{
			ParameterName: "vedlegg",
			ParameterType: errors.ParameterTypeEntity,
			Reason:        "det må sendes minst ett vedlegg",
			InvalidValue:  s.Vedlegg,
		})
	}

	if len(violations) > 0 {
		return errors.NewValidationError(violations)
	}
	return nil
}

// Outgoing builds the enriched ettersending as a new value.
func (s *Incoming) Outgoing(soknadID string, aktoerID aktoer.AktoerID, vedleggURLs []string) (*Outgoing, error) {
	doc := make(map[string]json.RawMessage, len(s.doc)+2)
	for k, v := range s.doc {
		doc[k] = v
	}

	soker := make(map[string]json.RawMessage, len(s.soker)+1)
	for k, v := range s.soker {
		soker[k] = v
	}
	if err := putJSON(soker, keyAktoerID, string(aktoerID)); err != nil {
		return nil, err
	}
	sokerRaw, err := json.Marshal(soker)
	if err != nil {
		return nil, err
	}
	doc[keySoker] = sokerRaw

	if err := putJSON(doc, keyVedleggURLs, vedleggURLs); err != nil {
		return nil, err
	}
	if err := putJSON(doc, keySoknadID, soknadID); err != nil {
		return nil, err
	}

	return &Outgoing{
		doc:         doc,
		SoknadID:    soknadID,
		VedleggURLs: vedleggURLs,
	}, nil
}

// Outgoing is the enriched ettersending ready for the outbound topic.
type Outgoing struct {
	doc         map[string]json.RawMessage
	SoknadID    string
	VedleggURLs []string
}

func (s *Outgoing) Data() (json.RawMessage, error) {
	return json.Marshal(s.doc)
}

// Dokumenter converts the attachments into store documents.
func (s *Incoming) Dokumenter() []dokument.Dokument {
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
		contentType, _ := stringValue(item, keyContentType)
		title, _ := stringValue(item, keyTitle)
		vedlegg = append(vedlegg, Vedlegg{
			Content:     content,
			ContentType: contentType,
			Title:       title,
		})
	}
	return vedlegg, nil
}

// decodeBase64 accepts both padded and unpadded standard encoding; clients
// are inconsistent about padding.
func decodeBase64(encoded string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(encoded); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(encoded)
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

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
