/*
Package dfs is a rule engine for dialog routing.

A Spec declares intents, the string facts visible to conditions under
ctx and sys, and one Dialog per intent. A Dialog is an ordered list of
cases, each a condition expression and a reply:

	spec, err := dfs.New(
	    []string{"billing"},
	    []dfs.Dialog{dfs.NewDialog("billing",
	        dfs.Case{Condition: `int(ctx.balance) > 100`, Reply: "Your balance is ${ctx.balance}."},
	        dfs.Case{Condition: "true", Reply: "Anything else?"},
	    )},
	    map[string]string{"balance": "250"},
	    map[string]string{"timezone": "US/Eastern"},
	)

# Evaluation

Conditions are written in the language of package expr with the
functions of package builtins. An Engine owns the function library and
the parse cache and is built once from config.Settings:

	engine, err := dfs.NewEngine(settings, dfs.WithLogger(logger))
	v, err := engine.Eval(ctx, spec, "is_weekend(sys.timezone)")
	sel, err := engine.Select(ctx, spec, "billing")

Spec.Eval and Spec.Select use a shared engine with default settings.

# Selection

Select evaluates the intent's cases in order and returns the first whose
condition is truthy. A condition that fails to parse or evaluate is
recorded as a CaseError and the next case is tried. The winning reply has
${ctx.key}, ${sys.key} and ${intent} references expanded.

# Documents

Specs round-trip through a block-style YAML document and a brace-style
JSON document. Both are checked against the schema returned by Schema
before decoding:

	spec, err := dfs.LoadFile("spec.yaml")
	err = spec.WriteFile("spec.json")

# Errors

Construction failures (undeclared intent, duplicate dialog) are returned
by New and the decoders as *errors.Error with Kind KindConstruction.
Evaluation failures wrap the positioned parse or eval error:

	_, err := spec.Eval("1 +")
	var e *dfserrors.Error
	errors.As(err, &e) // e.Kind == dfserrors.KindParse
*/
package dfs
