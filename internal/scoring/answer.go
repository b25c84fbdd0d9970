package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Resolved is a raw answer value interpreted against its criterion. The set of
// variants is closed: BooleanAnswer, SelectAnswer, NumberAnswer, TextAnswer.
type Resolved interface {
	// fraction returns the share of the criterion weight earned, in [0,1].
	fraction(c Criterion, cfg *Config) float64
	sealed()
}

type BooleanAnswer bool

type SelectAnswer struct {
	Option string
	// Index is the option's position in Criterion.Options, or -1 when the
	// chosen value is not one of the listed options.
	Index int
}

type NumberAnswer float64

type TextAnswer string

func (BooleanAnswer) sealed() {}
func (SelectAnswer) sealed()  {}
func (NumberAnswer) sealed()  {}
func (TextAnswer) sealed()    {}

func (a BooleanAnswer) fraction(_ Criterion, _ *Config) float64 {
	if a {
		return 1
	}
	return 0
}

func (a SelectAnswer) fraction(c Criterion, cfg *Config) float64 {
	if a.Index < 0 {
		return 0
	}
	if v, ok := c.OptionScores[a.Option]; ok {
		return clamp(v, 0, 1)
	}
	if v, ok := cfg.SelectLabels[strings.ToLower(a.Option)]; ok {
		return clamp(v, 0, 1)
	}
	if len(c.Options) == 1 {
		return 1
	}
	return float64(a.Index) / float64(len(c.Options)-1)
}

func (a NumberAnswer) fraction(c Criterion, cfg *Config) float64 {
	return cfg.bandFraction(c.Bands, float64(a))
}

func (a TextAnswer) fraction(_ Criterion, _ *Config) float64 {
	if strings.TrimSpace(string(a)) != "" {
		return 1
	}
	return 0
}

// Resolve interprets a raw value against the criterion's declared answer type.
// It returns nil when the value is missing or cannot be coerced unambiguously.
func Resolve(c Criterion, raw any) Resolved {
	if raw == nil {
		return nil
	}
	switch c.AnswerType {
	case AnswerBoolean:
		b, ok := BoolValue(raw)
		if !ok {
			return nil
		}
		return BooleanAnswer(b)
	case AnswerSelect:
		s, ok := StringValue(raw)
		if !ok || s == "" {
			return nil
		}
		for i, opt := range c.Options {
			if strings.EqualFold(opt, s) {
				return SelectAnswer{Option: opt, Index: i}
			}
		}
		return SelectAnswer{Option: s, Index: -1}
	case AnswerNumber:
		n, ok := NumberValue(raw)
		if !ok {
			return nil
		}
		return NumberAnswer(n)
	case AnswerText:
		s, ok := StringValue(raw)
		if !ok || s == "" {
			return nil
		}
		return TextAnswer(s)
	}
	return nil
}

// BoolValue coerces bools, numbers and yes/no style strings.
func BoolValue(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
		return false, false
	}
	if n, ok := numeric(raw); ok {
		return n != 0, true
	}
	return false, false
}

// NumberValue coerces Go numerics, json.Number and numeric strings.
func NumberValue(raw any) (float64, bool) {
	if n, ok := numeric(raw); ok {
		return n, true
	}
	s, ok := raw.(string)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimPrefix(s, "$")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// StringValue returns trimmed strings and formats numbers; other types fail.
func StringValue(raw any) (string, bool) {
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s), true
	}
	if n, ok := numeric(raw); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

func numeric(raw any) (float64, bool) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int8:
		n = float64(v)
	case int16:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint8:
		n = float64(v)
	case uint16:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
