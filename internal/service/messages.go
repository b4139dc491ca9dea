package service

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/cifra/internal/cipher"
	"github.com/RowanDark/cifra/internal/cryptanalysis"
)

// TransformRequest runs one registered operation over Text.
type TransformRequest struct {
	Operation string
	Text      string
	Params    cipher.Params
}

type TransformResponse struct {
	Text string
}

// CrackRequest asks for the Caesar shift of Text. Source is a free-form
// label recorded in the run history.
type CrackRequest struct {
	Text   string
	Source string
}

// CrackResponse carries the winning candidate. Warning is set when the
// daemon's dictionary is empty and the result is the degenerate shift 1.
type CrackResponse struct {
	RunID           string
	Shift           int
	Score           int
	Plaintext       string
	DictionaryWords int
	Warning         string
}

type FrequencyRequest struct {
	Text string
}

type FrequencyResponse struct {
	Histogram cryptanalysis.Histogram
}

func (r TransformRequest) encode() (*structpb.Struct, error) {
	fields := map[string]any{"operation": r.Operation, "text": r.Text}
	if len(r.Params) > 0 {
		fields["params"] = map[string]any(r.Params)
	}
	return structpb.NewStruct(fields)
}

func decodeTransformRequest(s *structpb.Struct) (TransformRequest, error) {
	req := TransformRequest{
		Operation: stringField(s, "operation"),
		Text:      stringField(s, "text"),
	}
	if req.Operation == "" {
		return req, fmt.Errorf("operation is required")
	}
	if v, ok := s.GetFields()["params"]; ok {
		params := v.GetStructValue()
		if params == nil {
			return req, fmt.Errorf("params must be an object")
		}
		req.Params = cipher.Params(params.AsMap())
	}
	return req, nil
}

func (r TransformResponse) encode() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"text": r.Text})
}

func decodeTransformResponse(s *structpb.Struct) TransformResponse {
	return TransformResponse{Text: stringField(s, "text")}
}

func (r CrackRequest) encode() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"text": r.Text, "source": r.Source})
}

func decodeCrackRequest(s *structpb.Struct) CrackRequest {
	return CrackRequest{Text: stringField(s, "text"), Source: stringField(s, "source")}
}

func (r CrackResponse) encode() (*structpb.Struct, error) {
	fields := map[string]any{
		"run_id":           r.RunID,
		"shift":            r.Shift,
		"score":            r.Score,
		"plaintext":        r.Plaintext,
		"dictionary_words": r.DictionaryWords,
	}
	if r.Warning != "" {
		fields["warning"] = r.Warning
	}
	return structpb.NewStruct(fields)
}

func decodeCrackResponse(s *structpb.Struct) CrackResponse {
	return CrackResponse{
		RunID:           stringField(s, "run_id"),
		Shift:           intField(s, "shift"),
		Score:           intField(s, "score"),
		Plaintext:       stringField(s, "plaintext"),
		DictionaryWords: intField(s, "dictionary_words"),
		Warning:         stringField(s, "warning"),
	}
}

func (r FrequencyRequest) encode() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"text": r.Text})
}

func (r FrequencyResponse) encode() (*structpb.Struct, error) {
	letters := make([]any, 0, len(r.Histogram.Letters))
	for _, lc := range r.Histogram.Letters {
		letters = append(letters, map[string]any{
			"letter":  string(lc.Letter),
			"count":   lc.Count,
			"percent": lc.Percent,
		})
	}
	return structpb.NewStruct(map[string]any{"total": r.Histogram.Total, "letters": letters})
}

func decodeFrequencyResponse(s *structpb.Struct) FrequencyResponse {
	h := cryptanalysis.Histogram{Total: intField(s, "total")}
	for _, v := range s.GetFields()["letters"].GetListValue().GetValues() {
		entry := v.GetStructValue()
		letter := []rune(stringField(entry, "letter"))
		if len(letter) != 1 {
			continue
		}
		h.Letters = append(h.Letters, cryptanalysis.LetterCount{
			Letter:  letter[0],
			Count:   intField(entry, "count"),
			Percent: entry.GetFields()["percent"].GetNumberValue(),
		})
	}
	return FrequencyResponse{Histogram: h}
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func intField(s *structpb.Struct, name string) int {
	return int(s.GetFields()[name].GetNumberValue())
}
