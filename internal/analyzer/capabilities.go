package analyzer

import (
	"errors"
	"strings"

	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/token"
	"github.com/funvibe/anonsum/internal/typesystem"
)

// derive decides capability c for t. For sums a refusal independent of
// the slots comes back as err.
func (w *walker) derive(t typesystem.Type, c typesystem.Capability) (typesystem.Derivation, error) {
	if sum, ok := t.(*typesystem.TSum); ok {
		der, err := w.deriver.Derive(sum, c)
		if err != nil {
			return der, err
		}
		w.record(der)
		return der, nil
	}
	return w.deriver.Has(t, c), nil
}

// requireCapability reports an error unless t has c. what names the
// operation that needs it.
func (w *walker) requireCapability(t typesystem.Type, c typesystem.Capability, tok token.Token, what string) (typesystem.Derivation, bool) {
	der, err := w.derive(t, c)
	if err != nil {
		w.addError(refusal(tok, err).Note("%s requires %s", what, c))
		return der, false
	}
	if der.Holds {
		return der, true
	}
	if _, isSum := t.(*typesystem.TSum); isSum {
		w.addError(notDerivable(tok, der).Note("%s requires %s", what, c))
	} else {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, tok,
			"%s requires %s, but %s does not implement it", what, c, t))
	}
	return der, false
}

// refusal classifies a derivation refused outright.
func refusal(tok token.Token, err error) *diagnostics.DiagnosticError {
	code := diagnostics.ErrS007
	if errors.Is(err, typesystem.ErrUnsupportedPolicy) {
		code = diagnostics.ErrS006
	}
	return diagnostics.NewError(code, tok, "%s", err.Error())
}

// notDerivable reports a derivation that fails on some slots.
func notDerivable(tok token.Token, der typesystem.Derivation) *diagnostics.DiagnosticError {
	d := diagnostics.NewError(diagnostics.ErrS007, tok, "%s cannot be derived for %s", der.Capability, der.Type)
	d.Missing = der.Missing
	for _, r := range strings.Split(der.Reason, "; ") {
		if r != "" {
			d.Note("%s", r)
		}
	}
	return d
}

// checkDerive handles `derive C1, C2<T> for Type`.
func (w *walker) checkDerive(ds *ast.DeriveStatement) {
	target := w.buildType(ds.Target)
	if isUnknown(target) {
		return
	}
	w.TypeMap[ds] = target
	for _, ref := range ds.Capabilities {
		c, ok := w.capability(ref)
		if !ok {
			continue
		}
		der, err := w.derive(target, c)
		if err != nil {
			w.addError(refusal(ref.Token, err))
			continue
		}
		if !der.Holds {
			if _, isSum := target.(*typesystem.TSum); isSum {
				w.addError(notDerivable(ref.Token, der))
			} else {
				w.addError(diagnostics.NewError(diagnostics.ErrA003, ref.Token,
					"%s does not implement %s", target, c).Note("%s", der.Reason))
			}
			continue
		}
		if ref.Arg != nil {
			want := w.buildType(ref.Arg)
			if !isUnknown(want) && !typesystem.Identical(want, der.Assoc) {
				d := diagnostics.NewError(diagnostics.ErrS007, ref.Arg.GetToken(),
					"%s of %s has associated type %s, not %s", c, target, der.Assoc, want)
				w.addError(d)
			}
		}
	}
}

// capability resolves a capability reference, checking the associated
// type argument is present exactly when the capability has one.
func (w *walker) capability(ref *ast.CapabilityRef) (typesystem.Capability, bool) {
	c, ok := typesystem.ParseCapability(ref.Name)
	if !ok {
		d := diagnostics.NewError(diagnostics.ErrA003, ref.Token, "unknown capability '%s'", ref.Name)
		var names []string
		for _, k := range typesystem.DerivableCapabilities {
			names = append(names, string(k))
		}
		if s := findSimilarNames(ref.Name, names, 2); len(s) > 0 {
			d.Note("did you mean: %s?", s[0])
		}
		w.addError(d)
		return "", false
	}
	if ref.Arg != nil && !c.HasAssoc() {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, ref.Token, "%s takes no type argument", c))
		return "", false
	}
	return c, true
}
