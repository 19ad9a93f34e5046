// Package audience evaluates targeting condition trees against user
// attributes.
//
// Conditions arrive as JSON taken verbatim from a project datafile: nested
// arrays whose first element is a boolean operator ("and", "or", "not") and
// whose remaining elements are sub-conditions or leaf match objects:
//
//	["and",
//	  ["or", {"name": "device", "match": "exact", "value": "iphone"}],
//	  ["not", {"name": "beta_opt_out", "match": "exists"}]]
//
// A leaf object names a user attribute, a match operator and an expected
// value. Supported operators are "exact" (strings, booleans and numbers),
// "exists", "substring", "gt" and "lt". A leaf without a "match" field
// defaults to "exact". An array without a leading operator string is treated
// as an implicit "or" of its elements.
//
// # Usage
//
//	conds, err := audience.ParseConditions(raw)
//	if err != nil {
//		// malformed condition JSON
//	}
//	ok := conds.Evaluate(map[string]any{"device": "iphone"})
//
// Evaluation never fails: a missing attribute, a type mismatch or an unknown
// operator simply makes the enclosing leaf evaluate to false. A nil
// *Conditions matches every user, which is how rules without any audience
// restriction are represented.
//
// Parsing and evaluation are pure; a parsed *Conditions is immutable and safe
// for concurrent use.
package audience
