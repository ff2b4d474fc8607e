package solver

import (
	"encoding/json"
	"math"
)

// NaN и ±Inf в JSON передаются как null; при разборе null или отсутствующее поле становится NaN

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func fromNullable(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

type iterJSON struct {
	Method Method   `json:"method"`
	K      int      `json:"k"`
	A      *float64 `json:"a"`
	B      *float64 `json:"b"`
	XPrev  *float64 `json:"xprev"`
	FXPrev *float64 `json:"fxprev"`
	X      *float64 `json:"x"`
	FX     *float64 `json:"fx"`
	DFX    *float64 `json:"dfx"`
	XNext  *float64 `json:"xnext"`
	Err    *float64 `json:"err"`
}

func (it Iter) MarshalJSON() ([]byte, error) {
	return json.Marshal(iterJSON{
		Method: it.Method,
		K:      it.K,
		A:      nullable(it.A),
		B:      nullable(it.B),
		XPrev:  nullable(it.XPrev),
		FXPrev: nullable(it.FXPrev),
		X:      nullable(it.X),
		FX:     nullable(it.FX),
		DFX:    nullable(it.DFX),
		XNext:  nullable(it.XNext),
		Err:    nullable(it.Err),
	})
}

func (it *Iter) UnmarshalJSON(b []byte) error {
	var v iterJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*it = Iter{
		Method: v.Method,
		K:      v.K,
		A:      fromNullable(v.A),
		B:      fromNullable(v.B),
		XPrev:  fromNullable(v.XPrev),
		FXPrev: fromNullable(v.FXPrev),
		X:      fromNullable(v.X),
		FX:     fromNullable(v.FX),
		DFX:    fromNullable(v.DFX),
		XNext:  fromNullable(v.XNext),
		Err:    fromNullable(v.Err),
	}
	return nil
}

type outcomeJSON struct {
	Kind       Kind     `json:"kind"`
	Root       *float64 `json:"root"`
	Iterations int      `json:"iterations"`
	A          *float64 `json:"a"`
	B          *float64 `json:"b"`
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(outcomeJSON{
		Kind:       o.Kind,
		Root:       nullable(o.Root),
		Iterations: o.Iterations,
		A:          nullable(o.A),
		B:          nullable(o.B),
	})
}

func (o *Outcome) UnmarshalJSON(b []byte) error {
	var v outcomeJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Outcome{
		Kind:       v.Kind,
		Root:       fromNullable(v.Root),
		Iterations: v.Iterations,
		A:          fromNullable(v.A),
		B:          fromNullable(v.B),
	}
	return nil
}
