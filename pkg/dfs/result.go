package dfs

import "github.com/randalmurphal/dfs/pkg/dfs/expr"

// Result is an evaluated value in response form: its text and the name of
// its kind (integer, float, boolean, string, array, object or null).
type Result struct {
	Value      string `json:"value" yaml:"value"`
	InstanceOf string `json:"instanceof" yaml:"instanceof"`
}

// FormatResult renders v. Arrays and objects are rendered as JSON.
func FormatResult(v expr.Value) Result {
	return Result{Value: v.String(), InstanceOf: v.Kind().String()}
}
