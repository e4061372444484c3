// Package model defines the request definitions edited in the workspace.
//
// A RequestDefinition is a template: its URL, parameter values, header
// values, body and auth fields may contain {{...}} placeholders. Drafts are
// updated with partial patches; saved copies live in a Collection.
package model
