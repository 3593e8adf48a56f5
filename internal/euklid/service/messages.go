package service

import (
	"errors"
	"fmt"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	"github.com/msto63/euklid/pkg/rational"
)

// Problem is an error prepared for display
type Problem struct {
	Kind      rational.ErrorKind `json:"kind" yaml:"kind"`
	Code      string             `json:"code" yaml:"code"`
	Message   string             `json:"message" yaml:"message"`
	Detail    string             `json:"detail,omitempty" yaml:"detail,omitempty"`
	RequestID string             `json:"request_id,omitempty" yaml:"request_id,omitempty"`
}

func (p *Problem) Error() string {
	return p.Message
}

// Explain turns err into a Problem with a message in locale. Locale may be
// an Accept-Language header value.
func (s *Service) Explain(locale string, err error) *Problem {
	if err == nil {
		return nil
	}
	locale = s.messages.DetectLocale(locale)
	kind := rational.KindOf(err)

	p := &Problem{
		Kind:    kind,
		Code:    string(mdwerror.GetCode(err)),
		Message: s.messages.Translate(locale, "error."+string(kind), messageData(err)),
		Detail:  err.Error(),
	}
	var mdwErr *mdwerror.Error
	if errors.As(err, &mdwErr) {
		p.RequestID = mdwErr.RequestID()
		if kind == rational.KindUnknown && passThrough[mdwErr.Code()] {
			p.Message = mdwErr.Message()
		}
	}
	return p
}

// passThrough lists codes whose own message is fit for display
var passThrough = map[mdwerror.Code]bool{
	mdwerror.CodeValidationFailed:   true,
	mdwerror.CodeRateLimited:        true,
	mdwerror.CodeNotFound:           true,
	mdwerror.CodeServiceUnavailable: true,
	mdwerror.CodeTimeout:            true,
}

// ErrorMessage returns only the localized message of err
func (s *Service) ErrorMessage(locale string, err error) string {
	if err == nil {
		return ""
	}
	return s.Explain(locale, err).Message
}

// StepTitle names a trace step kind in locale
func (s *Service) StepTitle(locale string, kind rational.StepKind) string {
	return s.messages.Translate(s.messages.DetectLocale(locale), "step."+kind.String())
}

// Label returns a result label such as "lcd" or "decimal" in locale
func (s *Service) Label(locale, key string) string {
	return s.messages.Translate(s.messages.DetectLocale(locale), "label."+key)
}

// messageData collects the template fields the error catalogues refer to
func messageData(err error) map[string]interface{} {
	data := map[string]interface{}{}

	var pe *rational.ParseError
	if errors.As(err, &pe) {
		data["Input"] = fmt.Sprintf("%q", pe.Input)
		data["Reason"] = pe.Reason
	}

	var mdwErr *mdwerror.Error
	if !errors.As(err, &mdwErr) {
		return data
	}
	if _, ok := data["Input"]; !ok {
		if v, ok := mdwErr.Detail("input"); ok {
			data["Input"] = fmt.Sprintf("%q", fmt.Sprint(v))
		}
	}
	if v, ok := mdwErr.Detail("min"); ok {
		data["Min"] = v
	}
	if v, ok := mdwErr.Detail("value"); ok {
		data["Value"] = v
	}
	if _, ok := data["Reason"]; !ok {
		if v, ok := mdwErr.Detail("expected"); ok {
			data["Reason"] = fmt.Sprintf("expected %v", v)
		} else {
			data["Reason"] = mdwErr.Message()
		}
	}
	return data
}
