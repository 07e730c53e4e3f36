// Package panel implements a reactive parameter panel: a set of named,
// typed input parameters bound to compute functions that re-run whenever
// their committed inputs change.
//
// Parameters carry a commit policy. Immediate parameters recompute their
// dependent bindings synchronously inside [Panel.Set]; Throttled parameters
// stage values until [Panel.Commit], modeling a slider that only finalizes
// on release. [Panel.CommitBatch] and [Panel.ApplyBatch] commit several
// parameters together so a binding over all of them recomputes once, not
// once per parameter.
//
//	p, _ := panel.New(
//	    panel.ChoiceParam("channel", []string{"Cz", "Fz"}, "Cz", panel.Immediate),
//	    panel.ScalarParam("fmax", 0, 250, 45, panel.Throttled),
//	)
//	b, _ := p.Bind([]string{"channel", "fmax"}, func(s panel.Snapshot) (any, error) {
//	    return fit(s["channel"].Choice(), s["fmax"].Scalar()), nil
//	})
//	p.Set("channel", panel.Choice("Fz")) // recomputes b now
//	p.Set("fmax", panel.Scalar(30))      // staged only
//	p.Commit("fmax")                     // recomputes b
//	result, ok := b.Result()
//
// Compute functions see a consistent snapshot of committed values, never a
// partially updated one. A compute error propagates to the caller of the
// triggering commit while the binding keeps its previous result.
package panel
