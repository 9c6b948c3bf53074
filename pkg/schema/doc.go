/*
Package schema defines the ingress and egress document format of the
editor and a small type system for validating property values.

A page document carries a components tree:

	{
	  "id": "home",
	  "componentsTree": [{
	    "componentName": "Page",
	    "props": {"title": "Home"},
	    "children": [{"componentName": "Text", "props": {"content": "hi"}}]
	  }],
	  "params": {"theme": "dark"}
	}

Documents can be read from JSON or YAML and from already-decoded maps.
Unknown top-level keys on a component (css, state, dataSource, methods and
anything else) are kept as addons and written back unchanged.

Property declarations name a type ("string", "int", "number", "bool",
"object", "array", "any" or a slice such as "[string]"); Validate checks
component props against them and reports every failure at once.
*/
package schema
