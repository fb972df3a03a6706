// dfs evaluates dialog flow specs: documents that route an intent to a
// reply by testing condition expressions against ctx and sys facts.
//
// Usage:
//
//	# Write a sample spec
//	dfs init support.yaml
//
//	# Evaluate a condition against it
//	dfs eval -f support.yaml 'int(ctx.some_var) > 40 && is_weekday()'
//
//	# Pick the reply for an intent, re-running on every save
//	dfs select -f support.yaml billing --watch
//
//	# Check conditions and replies without evaluating them
//	dfs validate -f support.yaml
//
//	# Explore interactively
//	dfs repl -f support.yaml
package main

func main() {
	Execute()
}
