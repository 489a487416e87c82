package node

import (
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"
)

// Numbers travel as protobuf doubles, seeds above 2^53 lose precision.
// Parameters left out of a request are left out of its Struct.

// Largest integer a double carries exactly
const maxExactInt = 1 << 53

func (r RankRequest) Struct() (*structpb.Struct, error) {
	links := make(map[string]interface{}, len(r.Graph))
	for from, out := range r.Graph {
		targets := make([]interface{}, len(out))
		for i, to := range out {
			targets[i] = to
		}
		links[from] = targets
	}
	fields := map[string]interface{}{
		"id":        r.ID,
		"graph":     links,
		"seed":      float64(r.Seed),
		"reference": r.Reference,
	}
	if r.Damping != nil {
		fields["damping"] = *r.Damping
	}
	if r.Samples != nil {
		fields["samples"] = float64(*r.Samples)
	}
	if r.Tolerance != nil {
		fields["tolerance"] = *r.Tolerance
	}
	if r.MaxIterations != nil {
		fields["max_iterations"] = float64(*r.MaxIterations)
	}
	return structpb.NewStruct(fields)
}

func RequestFromStruct(s *structpb.Struct) (RankRequest, error) {
	var r RankRequest
	var err error
	fields := s.GetFields()
	r.ID = fields["id"].GetStringValue()
	r.Reference = fields["reference"].GetBoolValue()
	if r.Damping, err = floatField(fields, "damping"); err != nil {
		return r, err
	}
	if r.Tolerance, err = floatField(fields, "tolerance"); err != nil {
		return r, err
	}
	if r.Samples, err = intField(fields, "samples"); err != nil {
		return r, err
	}
	if r.MaxIterations, err = intField(fields, "max_iterations"); err != nil {
		return r, err
	}
	if seed, ok := fields["seed"]; ok {
		v, err := numberValue(seed, "seed")
		if err != nil {
			return r, err
		}
		if v < 0 || v >= 1<<64 || v != math.Trunc(v) {
			return r, errors.Wrapf(ErrBadRequest, "seed %v is not an unsigned integer", v)
		}
		r.Seed = uint64(v)
	}

	links := fields["graph"].GetStructValue()
	if links == nil {
		return r, errors.Wrap(ErrBadRequest, "missing graph")
	}
	r.Graph = make(map[string][]string, len(links.GetFields()))
	for from, v := range links.GetFields() {
		list := v.GetListValue()
		if list == nil {
			return r, errors.Wrapf(ErrBadRequest, "links of %q are not a list", from)
		}
		targets := make([]string, 0, len(list.GetValues()))
		for _, to := range list.GetValues() {
			name, ok := to.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return r, errors.Wrapf(ErrBadRequest, "link of %q is not a page name", from)
			}
			targets = append(targets, name.StringValue)
		}
		r.Graph[from] = targets
	}
	return r, nil
}

// numberValue returns the finite number held by v
func numberValue(v *structpb.Value, name string) (float64, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, errors.Wrapf(ErrBadRequest, "%s is not a number", name)
	}
	if math.IsNaN(n.NumberValue) || math.IsInf(n.NumberValue, 0) {
		return 0, errors.Wrapf(ErrBadRequest, "%s is not finite", name)
	}
	return n.NumberValue, nil
}

// floatField returns nil when name is absent
func floatField(fields map[string]*structpb.Value, name string) (*float64, error) {
	v, ok := fields[name]
	if !ok {
		return nil, nil
	}
	n, err := numberValue(v, name)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// intField returns nil when name is absent. Only integers a double holds
// exactly are accepted.
func intField(fields map[string]*structpb.Value, name string) (*int, error) {
	f, err := floatField(fields, name)
	if f == nil || err != nil {
		return nil, err
	}
	if *f != math.Trunc(*f) || math.Abs(*f) > maxExactInt {
		return nil, errors.Wrapf(ErrBadRequest, "%s %v is not an integer", name, *f)
	}
	n := int(*f)
	return &n, nil
}

func (r RankResponse) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":            r.ID,
		"sampled":       ranksToStruct(r.Sampled),
		"iterated":      ranksToStruct(r.Iterated),
		"reference":     ranksToStruct(r.Reference),
		"iterations":    float64(r.Iterations),
		"max_deviation": r.MaxDeviation,
		"error":         r.Error,
	})
}

func ResponseFromStruct(s *structpb.Struct) RankResponse {
	fields := s.GetFields()
	return RankResponse{
		ID:           fields["id"].GetStringValue(),
		Sampled:      ranksFromStruct(fields["sampled"].GetStructValue()),
		Iterated:     ranksFromStruct(fields["iterated"].GetStructValue()),
		Reference:    ranksFromStruct(fields["reference"].GetStructValue()),
		Iterations:   int(fields["iterations"].GetNumberValue()),
		MaxDeviation: fields["max_deviation"].GetNumberValue(),
		Error:        fields["error"].GetStringValue(),
	}
}

func ranksToStruct(m map[string]float64) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for p, v := range m {
		out[p] = v
	}
	return out
}

// Empty rank maps decode as nil
func ranksFromStruct(s *structpb.Struct) map[string]float64 {
	if len(s.GetFields()) == 0 {
		return nil
	}
	m := make(map[string]float64, len(s.GetFields()))
	for p, v := range s.GetFields() {
		m[p] = v.GetNumberValue()
	}
	return m
}
