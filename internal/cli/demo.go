// Built-in chains available to the CLI. The "profile" chain is a small
// contact-card schema that exercises every feature of the engine: required
// fields, defaults, attribute removal, a shortcut upgrade edge, and
// downgrade projections.
package cli

import (
	"fmt"

	"github.com/mesh-intelligence/verso/pkg/vers"
)

// builtinChains returns the chains registered with the store, keyed by kind.
func builtinChains() (map[string]*vers.Chain, error) {
	profile, err := profileChain()
	if err != nil {
		return nil, fmt.Errorf("build profile chain: %w", err)
	}
	return map[string]*vers.Chain{
		"profile": profile,
	}, nil
}

// profileChain declares three schema versions of a contact card.
//
// Version 1 has a name and an email. Version 2 adds an optional phone.
// Version 3 folds email and phone into a contacts mapping and removes the
// flat fields; it can upgrade directly from version 1 through a shortcut
// edge and can project back down to both older versions.
func profileChain() (*vers.Chain, error) {
	return vers.NewChain(
		vers.VersionDef{
			Attributes: []vers.Attribute{
				{Name: "name", Required: true, Validate: nonEmptyString},
				{Name: "email", Required: true, Validate: nonEmptyString},
			},
		},
		vers.VersionDef{
			Attributes: []vers.Attribute{
				{Name: "phone", Default: ""},
			},
			Upgraders: []vers.Upgrader{
				{Fn: func(state vers.State) (vers.State, error) {
					state["phone"] = ""
					return state, nil
				}},
			},
			Downgraders: []vers.Downgrader{
				{To: 1, Fn: func(state vers.State) (vers.State, error) {
					delete(state, "phone")
					return state, nil
				}},
			},
		},
		vers.VersionDef{
			Attributes: []vers.Attribute{
				{Name: "contacts", Default: map[string]any{}},
			},
			Remove: []string{"email", "phone"},
			Upgraders: []vers.Upgrader{
				{Fn: foldContacts},
				{From: 1, Fn: foldContacts},
			},
			Downgraders: []vers.Downgrader{
				{To: 2, Fn: func(state vers.State) (vers.State, error) {
					email, phone := unfoldContacts(state)
					state["email"] = email
					state["phone"] = phone
					delete(state, "contacts")
					return state, nil
				}},
				{To: 1, Fn: func(state vers.State) (vers.State, error) {
					email, _ := unfoldContacts(state)
					state["email"] = email
					delete(state, "contacts")
					return state, nil
				}},
			},
		},
	)
}

// foldContacts moves the flat email and phone fields into the contacts
// mapping. It serves both the default edge from version 2 and the shortcut
// edge from version 1, where phone is simply absent.
func foldContacts(state vers.State) (vers.State, error) {
	contacts := map[string]any{}
	if email, ok := state["email"]; ok {
		contacts["email"] = email
	}
	if phone, ok := state["phone"]; ok && phone != "" {
		contacts["phone"] = phone
	}
	state["contacts"] = contacts
	delete(state, "email")
	delete(state, "phone")
	return state, nil
}

// unfoldContacts extracts email and phone strings from the contacts mapping.
func unfoldContacts(state vers.State) (email, phone string) {
	contacts, ok := state["contacts"].(map[string]any)
	if !ok {
		return "", ""
	}
	if v, ok := contacts["email"].(string); ok {
		email = v
	}
	if v, ok := contacts["phone"].(string); ok {
		phone = v
	}
	return email, phone
}

// nonEmptyString validates that a value is a non-empty string.
func nonEmptyString(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("value %v is not a string", v)
	}
	if s == "" {
		return nil, fmt.Errorf("value must not be empty")
	}
	return s, nil
}
