/*
Package template expands variable references in dialog replies.

# Overview

A reply may reference context and system facts by dotted path. Both
${path} and $path forms are recognized:

	vars := map[string]any{
	    "ctx": map[string]string{"name": "Ada"},
	    "sys": map[string]string{"timezone": "US/Eastern"},
	}
	template.Expand("Hi ${ctx.name}, it is late in $sys.timezone.", vars)
	// "Hi Ada, it is late in US/Eastern."

Intermediate path segments must resolve to map[string]any or
map[string]string. Leaf values are rendered with String() when they
implement fmt.Stringer, otherwise with %v.

# Missing References

By default unresolved references are kept as-is. Use WithMissingAction to
drop them (MissingEmpty) or to fail (MissingError).

# Thread Safety

Expander is safe for concurrent use after construction.
*/
package template
