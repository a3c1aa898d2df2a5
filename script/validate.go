package script

import (
	"fmt"
	"regexp"
	"slices"
)

// Action keys of a target. Exactly one must be present.
const (
	ActionUpdates  = "updates"
	ActionWrite    = "write"
	ActionCopyFrom = "copyFrom"
)

var actionKeys = []string{ActionUpdates, ActionWrite, ActionCopyFrom}

// Validate checks that root has the shape of a version script. It returns
// an [ErrScript] located at the offending node for the first violation
// found, checking vars, calcVars, operations, and targets in that order.
func Validate(root *Node) error {
	if root == nil || root.Type != TypeObject {
		return Errorf(root, "script must be an object")
	}

	checks := []func(*Node) error{
		validateVars,
		validateCalcVars,
		validateOperations,
		validateTargets,
	}

	for _, check := range checks {
		if err := check(root); err != nil {
			return err
		}
	}

	return nil
}

func validateVars(root *Node) error {
	vars := root.Get("vars")
	if vars == nil {
		return Errorf(root, "missing 'vars' entry")
	}

	if vars.Type != TypeObject {
		return Errorf(vars, "'vars' entry must be an object")
	}

	for name, v := range vars.All() {
		if name == "tz" {
			if v.Type != TypeString {
				return Errorf(v, "'vars.tz' must be a string")
			}

			continue
		}

		if !v.IsScalar() {
			return Errorf(v, "'vars.%s' must be a string or number", name)
		}
	}

	return nil
}

func validateCalcVars(root *Node) error {
	calcVars := root.Get("calcVars")
	if calcVars == nil {
		return nil
	}

	if calcVars.Type != TypeObject {
		return Errorf(calcVars, "'calcVars' entry must be an object")
	}

	for name, v := range calcVars.All() {
		if v.Type != TypeString {
			return Errorf(v, "'calcVars.%s' must be a string", name)
		}
	}

	return nil
}

func validateOperations(root *Node) error {
	ops := root.Get("operations")
	if ops == nil {
		return Errorf(root, "missing 'operations' entry")
	}

	if ops.Type != TypeObject {
		return Errorf(ops, "'operations' entry must be an object")
	}

	for name, v := range ops.All() {
		if v.Type != TypeString {
			return Errorf(v, "'operations.%s' must be a string", name)
		}
	}

	return nil
}

func validateTargets(root *Node) error {
	targets := root.Get("targets")
	if targets == nil {
		return Errorf(root, "missing 'targets' entry")
	}

	if targets.Type != TypeArray {
		return Errorf(targets, "'targets' entry must be an array")
	}

	if len(targets.Elements) == 0 {
		return Errorf(targets, "'targets' must not be empty")
	}

	for _, target := range targets.Elements {
		if err := validateTarget(target); err != nil {
			return err
		}
	}

	return nil
}

func validateTarget(target *Node) error {
	if target.Type != TypeObject {
		return Errorf(target, "target must be an object")
	}

	desc := target.Get("description")
	if desc == nil {
		return Errorf(target, "target is missing 'description'")
	}

	if s, ok := desc.Str(); !ok || s == "" {
		return Errorf(desc, "target 'description' must be a non-empty string")
	}

	files := target.Get("files")
	if files == nil {
		return Errorf(target, "target is missing 'files'")
	}

	if files.Type != TypeArray || len(files.Elements) == 0 {
		return Errorf(files, "target 'files' must be a non-empty array")
	}

	for _, f := range files.Elements {
		if f.Type != TypeString {
			return Errorf(f, "target file must be a string")
		}
	}

	action := target.Get("action")
	if action == nil {
		return Errorf(target, "target is missing 'action'")
	}

	return validateAction(action)
}

func validateAction(action *Node) error {
	if action.Type != TypeObject {
		return Errorf(action, "target 'action' must be an object")
	}

	for _, m := range action.Members {
		if !slices.Contains(actionKeys, m.Key) {
			return ErrScript.WithPosition(m.KeyPos).
				Wrap(fmt.Errorf("unknown action %q", m.Key))
		}
	}

	switch len(action.Members) {
	case 0:
		return Errorf(action, "target 'action' must contain one of 'updates', 'write', or 'copyFrom'")
	case 1:
	default:
		return Errorf(action, "target 'action' must contain only one action")
	}

	m := action.Members[0]

	switch m.Key {
	case ActionUpdates:
		return validateUpdates(m.Value)

	default:
		if m.Value.Type != TypeString {
			return Errorf(m.Value, "action '%s' must be a string", m.Key)
		}
	}

	return nil
}

func validateUpdates(updates *Node) error {
	if updates.Type != TypeArray || len(updates.Elements) == 0 {
		return Errorf(updates, "action 'updates' must be a non-empty array")
	}

	for _, u := range updates.Elements {
		if u.Type != TypeObject {
			return Errorf(u, "update must be an object")
		}

		search := u.Get("search")
		if search == nil {
			return Errorf(u, "update is missing 'search'")
		}

		expr, ok := search.Str()
		if !ok {
			return Errorf(search, "update 'search' must be a string")
		}

		if _, err := regexp.Compile(expr); err != nil {
			return Errorf(search, "update 'search' is not a valid regular expression: %w", err)
		}

		replace := u.Get("replace")
		if replace == nil {
			return Errorf(u, "update is missing 'replace'")
		}

		if replace.Type != TypeString {
			return Errorf(replace, "update 'replace' must be a string")
		}
	}

	return nil
}
