package harness

// Result is the outcome of running a suite.
type Result struct {
	// Suite is the suite name.
	Suite string `json:"suite"`

	// Pass is true when every case passed.
	Pass bool `json:"pass"`

	// Cases holds one entry per case, in suite order.
	Cases []CaseResult `json:"cases"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name string `json:"name"`
	Pass bool   `json:"pass"`

	// Got is the rendered output, one entry per value. Empty when the
	// case failed to bind.
	Got []string `json:"got,omitempty"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result for the named suite.
func NewResult(suite string) *Result {
	return &Result{Suite: suite, Pass: true, Cases: []CaseResult{}}
}

// add appends c and folds its outcome into the suite result.
func (r *Result) add(c CaseResult) {
	r.Cases = append(r.Cases, c)
	if !c.Pass {
		r.Pass = false
	}
}

// Failed returns the failed cases.
func (r *Result) Failed() []CaseResult {
	var out []CaseResult
	for _, c := range r.Cases {
		if !c.Pass {
			out = append(out, c)
		}
	}
	return out
}

func (c *CaseResult) addError(err error) {
	c.Errors = append(c.Errors, err.Error())
	c.Pass = false
}
