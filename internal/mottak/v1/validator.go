package v1

import (
	"encoding/json"
	"fmt"
	"time"

	"soknad-mottak/internal/common/errors"
)

const dateLayout = "2006-01-02"

type periode struct {
	FraOgMed string `json:"fraOgMed"`
	TilOgMed string `json:"tilOgMed"`
}

type arbeidsgivere struct {
	Organisasjoner []organisasjon `json:"organisasjoner"`
}

type organisasjon struct {
	Organisasjonsnummer string `json:"organisasjonsnummer"`
}

// ValidateSoknad checks every rule and collects all violations before
// failing, so a caller gets the complete picture in one response.
func ValidateSoknad(s *SoknadIncoming) error {
	var violations []errors.Violation

	violations = append(violations, validateIdentitet(s.Fodselsnummer, s.AktoerID)...)
	violations = append(violations, validateVedlegg(s.Vedlegg)...)
	violations = append(violations, validatePeriode(s.doc)...)
	violations = append(violations, validateGrad(s.doc)...)
	violations = append(violations, validateBekreftelser(s.doc)...)
	violations = append(violations, validateArbeidsgivere(s.doc)...)

	if len(violations) > 0 {
		return errors.NewValidationError(violations)
	}
	return nil
}

func validateIdentitet(fodselsnummer, aktoerID string) []errors.Violation {
	var violations []errors.Violation
	if aktoerID != "" && !isDigits(aktoerID) {
		violations = append(violations, errors.Violation{
			ParameterName: "søker.aktørId",
			ParameterType: errors.ParameterTypeEntity,
			Reason:        "aktørId må kun inneholde siffer",
			InvalidValue:  aktoerID,
		})
	}
	if fodselsnummer == "" && aktoerID != "" {
		return violations
	}
	if len(fodselsnummer) != 11 || !isDigits(fodselsnummer) {
		violations = append(violations, errors.Violation{
			ParameterName: "søker.fødselsnummer",
			ParameterType: errors.ParameterTypeEntity,
			Reason:        "fødselsnummer må bestå av 11 siffer",
			InvalidValue:  fodselsnummer,
		})
	}
	return violations
}

func validateVedlegg(vedlegg []Vedlegg) []errors.Violation {
	if len(vedlegg) == 0 {
		return []errors.Violation{{
			ParameterName: "vedlegg",
			ParameterType: errors.ParameterTypeEntity,
			Reason:        "det må sendes minst ett vedlegg",
			InvalidValue:  vedlegg,
		}}
	}
	return nil
}

func validatePeriode(doc map[string]json.RawMessage) []errors.Violation {
	var p periode
	fraRaw, fraOK := doc["fraOgMed"]
	tilRaw, tilOK := doc["tilOgMed"]
	if !fraOK || !tilOK {
		return nil
	}
	if json.Unmarshal(fraRaw, &p.FraOgMed) != nil || json.Unmarshal(tilRaw, &p.TilOgMed) != nil {
		return nil
	}
	fra, errFra := time.Parse(dateLayout, p.FraOgMed)
	til, errTil := time.Parse(dateLayout, p.TilOgMed)
	if errFra != nil || errTil != nil {
		return nil
	}
	if fra.After(til) {
		return []errors.Violation{{
			ParameterName: "fraOgMed",
			ParameterType: errors.ParameterTypeEntity,
			Reason:        "fraOgMed kan ikke være etter tilOgMed",
			InvalidValue:  p.FraOgMed,
		}}
	}
	return nil
}

func validateGrad(doc map[string]json.RawMessage) []errors.Violation {
	raw, ok := doc["grad"]
	if !ok {
		return nil
	}
	var grad int
	if err := json.Unmarshal(raw, &grad); err != nil {
		return nil
	}
	if grad < 20 || grad > 100 {
		return []errors.Violation{{
			ParameterName: "grad",
			ParameterType: errors.ParameterTypeEntity,
			Reason:        "grad må være mellom 20 og 100",
			InvalidValue:  grad,
		}}
	}
	return nil
}

func validateBekreftelser(doc map[string]json.RawMessage) []errors.Violation {
	var violations []errors.Violation
	for _, name := range []string{"harBekreftetOpplysninger", "harForståttRettigheterOgPlikter"} {
		raw, ok := doc[name]
		if !ok {
			continue
		}
		var bekreftet bool
		if err := json.Unmarshal(raw, &bekreftet); err != nil {
			continue
		}
		if !bekreftet {
			violations = append(violations, errors.Violation{
				ParameterName: name,
				ParameterType: errors.ParameterTypeEntity,
				Reason:        "må bekreftes for å sende inn søknad",
				InvalidValue:  bekreftet,
			})
		}
	}
	return violations
}

func validateArbeidsgivere(doc map[string]json.RawMessage) []errors.Violation {
	raw, ok := doc["arbeidsgivere"]
	if !ok {
		return nil
	}
	var a arbeidsgivere
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil
	}
	var violations []errors.Violation
	for i, org := range a.Organisasjoner {
		if len(org.Organisasjonsnummer) != 9 || !isDigits(org.Organisasjonsnummer) {
			violations = append(violations, errors.Violation{
				ParameterName: fmt.Sprintf("arbeidsgivere.organisasjoner[%d].organisasjonsnummer", i),
				ParameterType: errors.ParameterTypeEntity,
				Reason:        "organisasjonsnummer må bestå av 9 siffer",
				InvalidValue:  org.Organisasjonsnummer,
			})
		}
	}
	return violations
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
